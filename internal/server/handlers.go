package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/suruext/internal/database"
	"github.com/nao1215/suruext/internal/lexeme"
)

const (
	missingParamsMessage = "Missing required parameters. Required: lang, lemma, category. Optional: suru_id, sv_gloss, betydelse_objekt"
	failureMessage       = "An error occurred while processing the request"
)

// usage is the body of GET /.
type usage struct {
	Message string        `json:"message"`
	Usage   endpointUsage `json:"usage"`
}

type endpointUsage struct {
	Endpoint           string   `json:"endpoint"`
	Method             string   `json:"method"`
	RequiredParameters []string `json:"required_parameters"`
	OptionalParameters []string `json:"optional_parameters"`
	Example            string   `json:"example"`
}

// addResponse is the body of a successful GET /add.
type addResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	LexemeID  string         `json:"lexeme_id"`
	LexemeURL string         `json:"lexeme_url"`
	Created   bool           `json:"created"`
	SenseID   string         `json:"sense_id,omitempty"`
	Params    map[string]any `json:"parameters"`
}

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleUsage(w http.ResponseWriter, _ *http.Request) {
	example := s.baseURL + "/add?lang=fi&lemma=haaste&category=noun&suru_id=SURU_7107788c441b76dfdb12e2eb7ab5a1a2&sv_gloss=utmaning&betydelse_objekt=Q16511806"
	s.writeJSON(w, http.StatusOK, usage{
		Message: "Suru Wikidata Lexeme Creator API",
		Usage: endpointUsage{
			Endpoint:           "/add",
			Method:             http.MethodGet,
			RequiredParameters: []string{"lang", "lemma", "category"},
			OptionalParameters: []string{"suru_id", "sv_gloss", "betydelse_objekt"},
			Example:            example,
		},
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := lexeme.Request{
		Lang:      q.Get("lang"),
		Lemma:     q.Get("lemma"),
		Category:  q.Get("category"),
		SuruID:    q.Get("suru_id"),
		SVGloss:   q.Get("sv_gloss"),
		SenseItem: q.Get("betydelse_objekt"),
	}
	params := parameters(q)

	res, err := s.adder.Add(r.Context(), req)
	switch {
	case errors.Is(err, lexeme.ErrMissingParameter):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingParamsMessage})
		return
	case errors.Is(err, lexeme.ErrUnknownCategory),
		errors.Is(err, lexeme.ErrUnknownLanguage),
		errors.Is(err, lexeme.ErrInvalidItem):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("lexeme creation failed", "lemma", req.Lemma, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Message: failureMessage})
		return
	}

	s.record(r, req, res)
	s.writeJSON(w, http.StatusOK, addResponse{
		Success:   true,
		Message:   fmt.Sprintf("Successfully processed lexeme: %s:%s (%s)", req.Lang, req.Lemma, req.Category),
		LexemeID:  res.LexemeID,
		LexemeURL: res.URL,
		Created:   res.Created,
		SenseID:   res.SenseID,
		Params:    params,
	})
}

// parameters echoes the query; absent optional parameters are null.
func parameters(q url.Values) map[string]any {
	out := make(map[string]any, 6)
	for _, name := range []string{"lang", "lemma", "category", "suru_id", "sv_gloss", "betydelse_objekt"} {
		if q.Has(name) {
			out[name] = q.Get(name)
		} else {
			out[name] = nil
		}
	}
	return out
}

func (s *Server) record(r *http.Request, req lexeme.Request, res *lexeme.Result) {
	if s.store == nil {
		return
	}
	_, err := s.store.RecordCreation(r.Context(), &database.Creation{
		LexemeID:  res.LexemeID,
		Lemma:     req.Lemma,
		Lang:      req.Lang,
		Category:  req.Category,
		SuruID:    req.SuruID,
		SenseID:   res.SenseID,
		SenseItem: res.SenseItem,
		Created:   res.Created,
	})
	if err != nil {
		s.logger.Warn("failed to record creation", "lexeme", res.LexemeID, "error", err)
	}
}

func (s *Server) handleAugment(w http.ResponseWriter, r *http.Request) {
	if s.augmenter == nil {
		s.writeHTML(w, http.StatusNotFound, s.renderer.ErrorFragment("augmentation is disabled"))
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeHTML(w, http.StatusBadRequest, s.renderer.ErrorFragment("missing url parameter"))
		return
	}
	if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		s.writeHTML(w, http.StatusBadRequest, s.renderer.ErrorFragment("url must be http or https"))
		return
	}

	report, err := s.augmenter.Augment(r.Context(), target, r.URL.Query().Get("suru_id"))
	if s.store != nil && report != nil {
		if _, serr := s.store.SaveReport(r.Context(), report); serr != nil {
			s.logger.Warn("failed to save report", "target", target, "error", serr)
		}
	}
	if err != nil {
		s.logger.Warn("augmentation failed", "target", target, "error", err)
		s.writeHTML(w, http.StatusBadGateway, s.renderer.ErrorFragment(err.Error()))
		return
	}
	s.writeHTML(w, http.StatusOK, report.Fragment)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}
