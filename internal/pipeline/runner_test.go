package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/suruext/internal/model"
)

func TestRunner(t *testing.T) {
	t.Parallel()

	t.Run("augment applies the suru id and settings", func(t *testing.T) {
		t.Parallel()
		svc, lex, _ := newServices(map[string]*model.Page{"p.html": htmlPage("p.html", testPage)})
		r := &Runner{Services: svc, Concurrency: 2, Inject: true}

		report, err := r.Augment(context.Background(), "p.html", "SURU_xyz")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"xyz"}, lex.suruCalls); diff != "" {
			t.Errorf("suru lookups mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{2}, lex.limits); diff != "" {
			t.Errorf("limits mismatch (-want +got):\n%s", diff)
		}
		if report.AugmentedPage == "" || report.Fragment == "" {
			t.Error("page not rendered")
		}
	})

	t.Run("failed run still returns the report", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newServices(nil)
		r := &Runner{Services: svc}

		report, err := r.Augment(context.Background(), "missing.html", "")
		if err == nil {
			t.Fatal("expected error")
		}
		if report == nil || report.Error == "" {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("factory feeds the batch processor", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newServices(map[string]*model.Page{
			"a.html": htmlPage("a.html", testPage),
			"b.html": htmlPage("b.html", testPage),
		})
		r := &Runner{Services: svc}

		reports, err := NewBatchProcessor(r.Factory(""), WithConcurrency(2)).
			ProcessBatch(context.Background(), []string{"a.html", "b.html"})
		if err != nil {
			t.Fatal(err)
		}
		for _, report := range reports {
			if report.Error != "" || report.Fragment == "" {
				t.Errorf("report %s: error %q", report.Target, report.Error)
			}
		}
	})
}
