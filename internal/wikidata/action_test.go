package wikidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
)

const csrfToken = "0123456789abcdef0123456789abcdef+\\"

// fakeActionAPI is a minimal api.php: it hands out tokens, accepts one bot
// password and records every edit it receives.
type fakeActionAPI struct {
	t *testing.T

	mu    sync.Mutex
	edits []map[string]string
}

func (f *fakeActionAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("bad form: %v", err)
	}
	if r.Form.Get("format") != "json" {
		f.t.Errorf("format = %q", r.Form.Get("format"))
	}
	w.Header().Set("Content-Type", "application/json")

	loggedIn := false
	if c, err := r.Cookie("session"); err == nil && c.Value == "ok" {
		loggedIn = true
	}

	switch r.Form.Get("action") {
	case "wbsearchentities":
		io.WriteString(w, `{"search":[{"id":"L7","label":"haaste","concepturi":"http://www.wikidata.org/entity/L7",`+ //nolint:errcheck // test server
			`"display":{"label":{"value":"haaste","language":"fi"},"description":{"value":"Finnish, noun","language":"en"}}},`+
			`{"id":"Q3","label":"plain","description":"item description"}]}`)
	case "wbgetentities":
		if r.Form.Get("ids") == "L7" {
			io.WriteString(w, `{"entities":{"L7":{"id":"L7","type":"lexeme","language":"Q1412","lexicalCategory":"Q1084",`+ //nolint:errcheck // test server
				`"lemmas":{"fi":{"language":"fi","value":"haaste"}},`+
				`"senses":[{"id":"L7-S1","glosses":{"sv":{"language":"sv","value":"utmaning"}},`+
				`"claims":{"P5137":[{"id":"c1","mainsnak":{"snaktype":"value","property":"P5137","datavalue":{"type":"wikibase-entityid","value":{"entity-type":"item","numeric-id":1,"id":"Q1"}}}}]}}]}}}`)
			return
		}
		io.WriteString(w, `{"entities":{"`+r.Form.Get("ids")+`":{"id":"`+r.Form.Get("ids")+`","missing":""}}}`) //nolint:errcheck // test server
	case "query":
		switch r.Form.Get("type") {
		case "login":
			io.WriteString(w, `{"query":{"tokens":{"logintoken":"lt+\\"}}}`) //nolint:errcheck // test server
		case "csrf":
			tok := "+\\"
			if loggedIn {
				tok = csrfToken
			}
			json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"tokens": map[string]string{"csrftoken": tok}}}) //nolint:errcheck,errchkjson // test server
		}
	case "login":
		if r.Method != http.MethodPost || r.Form.Get("lgtoken") != "lt+\\" {
			f.t.Errorf("login request: method %s token %q", r.Method, r.Form.Get("lgtoken"))
		}
		if r.Form.Get("lgname") == "Bot@suru" && r.Form.Get("lgpassword") == "secret" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
			io.WriteString(w, `{"login":{"result":"Success"}}`) //nolint:errcheck // test server
			return
		}
		io.WriteString(w, `{"login":{"result":"Failed","reason":"Incorrect username or password entered."}}`) //nolint:errcheck // test server
	default:
		f.record(r)
		if r.Form.Get("token") != csrfToken {
			io.WriteString(w, `{"error":{"code":"badtoken","info":"Invalid CSRF token."}}`) //nolint:errcheck // test server
			return
		}
		switch r.Form.Get("action") {
		case "wbeditentity":
			io.WriteString(w, `{"entity":{"id":"L42","type":"lexeme"},"success":1}`) //nolint:errcheck // test server
		case "wbcreateclaim":
			io.WriteString(w, `{"claim":{"id":"L42$abc","mainsnak":{"snaktype":"value","property":"`+r.Form.Get("property")+`"}},"success":1}`) //nolint:errcheck // test server
		case "wbladdsense":
			io.WriteString(w, `{"sense":{"id":"L42-S1"},"success":1}`) //nolint:errcheck // test server
		default:
			io.WriteString(w, `{"error":{"code":"badvalue","info":"Unrecognized value for parameter action"}}`) //nolint:errcheck // test server
		}
	}
}

func (f *fakeActionAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := make(map[string]string, len(r.Form))
	for k := range r.Form {
		m[k] = r.Form.Get(k)
	}
	f.edits = append(f.edits, m)
}

func newActionClient(t *testing.T) (*ActionClient, *fakeActionAPI) {
	t.Helper()
	fake := &fakeActionAPI{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	hc := srv.Client()
	hc.Jar = jar
	return NewActionClient(hc, srv.URL+"/w/api.php", nil), fake
}

func TestActionClientSearchEntities(t *testing.T) {
	t.Parallel()

	c, _ := newActionClient(t)
	got, err := c.SearchEntities(context.Background(), SearchParams{
		Search: "haaste", Language: "fi", UserLang: "en", Type: SearchTypeLexeme, Limit: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	t.Run("display terms are preferred", func(t *testing.T) {
		t.Parallel()
		if l := got[0].DisplayLabel(); l.Value != "haaste" || l.Language != "fi" {
			t.Errorf("DisplayLabel() = %+v", l)
		}
		if d := got[0].DisplayDescription(); d != "Finnish, noun" {
			t.Errorf("DisplayDescription() = %q", d)
		}
	})

	t.Run("plain terms are the fallback", func(t *testing.T) {
		t.Parallel()
		if l := got[1].DisplayLabel(); l.Value != "plain" {
			t.Errorf("DisplayLabel() = %+v", l)
		}
		if d := got[1].DisplayDescription(); d != "item description" {
			t.Errorf("DisplayDescription() = %q", d)
		}
	})
}

func TestActionClientGetEntity(t *testing.T) {
	t.Parallel()

	c, _ := newActionClient(t)

	t.Run("lexeme senses and claims are decoded", func(t *testing.T) {
		t.Parallel()
		e, err := c.GetEntity(context.Background(), "L7")
		if err != nil {
			t.Fatal(err)
		}
		if e.Lemmas["fi"].Value != "haaste" || len(e.Senses) != 1 {
			t.Fatalf("entity = %+v", e)
		}
		if ids := e.Senses[0].ItemIDs("P5137"); len(ids) != 1 || ids[0] != "Q1" {
			t.Errorf("ItemIDs() = %v", ids)
		}
	})

	t.Run("missing entity is an invalid response", func(t *testing.T) {
		t.Parallel()
		if _, err := c.GetEntity(context.Background(), "L999999"); !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("error = %v, want ErrInvalidResponse", err)
		}
	})
}

func TestActionClientLoginAndEdit(t *testing.T) {
	t.Parallel()

	c, fake := newActionClient(t)
	ctx := context.Background()

	if err := c.Login(ctx, "Bot@suru", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	id, err := c.NewLexeme(ctx, "haaste", "fi", "Q1412", "Q1084")
	if err != nil || id != "L42" {
		t.Fatalf("NewLexeme() = %q, %v", id, err)
	}
	if _, err := c.CreateStringClaim(ctx, id, "P12682", "7107788c441b76dfdb12e2eb7ab5a1a2"); err != nil {
		t.Fatalf("CreateStringClaim() error = %v", err)
	}
	sense, err := c.AddSense(ctx, id, map[string]string{"sv": "utmaning"})
	if err != nil || sense != "L42-S1" {
		t.Fatalf("AddSense() = %q, %v", sense, err)
	}
	if _, err := c.CreateItemClaim(ctx, sense, "P5137", 144); err != nil {
		t.Fatalf("CreateItemClaim() error = %v", err)
	}

	if len(fake.edits) != 4 {
		t.Fatalf("edits = %d, want 4", len(fake.edits))
	}
	for _, e := range fake.edits {
		if e["bot"] != "1" || e["token"] != csrfToken {
			t.Errorf("edit %s lacks bot flag or token: %v", e["action"], e)
		}
	}

	var lexeme map[string]any
	if err := json.Unmarshal([]byte(fake.edits[0]["data"]), &lexeme); err != nil {
		t.Fatal(err)
	}
	if lexeme["language"] != "Q1412" || lexeme["lexicalCategory"] != "Q1084" {
		t.Errorf("wbeditentity data = %v", lexeme)
	}
	if fake.edits[1]["value"] != `"7107788c441b76dfdb12e2eb7ab5a1a2"` {
		t.Errorf("string claim value = %s", fake.edits[1]["value"])
	}
	if fake.edits[3]["value"] != `{"entity-type":"item","numeric-id":144}` {
		t.Errorf("item claim value = %s", fake.edits[3]["value"])
	}
}

func TestActionClientLoginFailure(t *testing.T) {
	t.Parallel()

	c, _ := newActionClient(t)
	if err := c.Login(context.Background(), "Bot@suru", "wrong"); !errors.Is(err, ErrLoginFailed) {
		t.Errorf("Login() error = %v, want ErrLoginFailed", err)
	}
}

func TestActionClientEditWithoutLogin(t *testing.T) {
	t.Parallel()

	c, fake := newActionClient(t)
	if _, err := c.NewLexeme(context.Background(), "x", "fi", "Q1412", "Q1084"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("NewLexeme() error = %v, want ErrNotLoggedIn", err)
	}
	if len(fake.edits) != 0 {
		t.Errorf("edit was sent without login: %v", fake.edits)
	}
}

func TestActionClientAPIError(t *testing.T) {
	t.Parallel()

	c, _ := newActionClient(t)
	c.csrf = "stale+\\"

	_, err := c.AddSense(context.Background(), "L1", map[string]string{"sv": "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "badtoken" {
		t.Errorf("error = %v, want badtoken APIError", err)
	}

	// The rejected token is dropped so the next edit asks for a new login.
	if _, err := c.AddSense(context.Background(), "L1", map[string]string{"sv": "x"}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("second AddSense() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestIsSessionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "not logged in", err: ErrNotLoggedIn, want: true},
		{name: "bad token", err: &APIError{Code: "badtoken"}, want: true},
		{name: "wrapped assert user failed", err: fmt.Errorf("add sense: %w", &APIError{Code: "assertuserfailed"}), want: true},
		{name: "notloggedin code", err: &APIError{Code: "notloggedin"}, want: true},
		{name: "other api error", err: &APIError{Code: "modification-failed"}, want: false},
		{name: "login failure", err: ErrLoginFailed, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsSessionError(tt.err); got != tt.want {
				t.Errorf("IsSessionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	msg := (&StatusError{URL: "u", StatusCode: 500, Body: string(long)}).Error()
	if len(msg) > 260 {
		t.Errorf("message not truncated: %d bytes", len(msg))
	}
}
