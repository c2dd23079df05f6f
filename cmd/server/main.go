// Command server exposes the spandex tokenizer and matching engines as a
// JSON REST API. Rules are compiled once at startup from a JSON rule
// file and shared read-only by all requests.
//
// Endpoints:
//
//	POST /api/tokenize   body: {"text":"..."}
//	POST /api/match      body: {"text":"..."}
//	POST /api/entities   body: {"text":"..."}
//	GET  /api/rules
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/cors"
	"go.uber.org/zap"

	spandex "github.com/corpustools/spandex"
)

// config is the TOML server configuration.
type config struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
	// Rules is the path to the JSON rule file.
	Rules string `toml:"rules"`
	// AllowedOrigins configures CORS; empty means same-origin only.
	AllowedOrigins []string `toml:"allowed_origins"`
}

func defaultConfig() config {
	return config{Addr: ":8080", Rules: "rules.json"}
}

// ---- JSON response types ------------------------------------------------

type tokenJSON struct {
	Text       string `json:"text"`
	Idx        int    `json:"idx"`
	Whitespace bool   `json:"whitespace"`
	IsAlpha    bool   `json:"is_alpha"`
	IsDigit    bool   `json:"is_digit"`
	IsPunct    bool   `json:"is_punct"`
	IsTitle    bool   `json:"is_title"`
	LikeNum    bool   `json:"like_num"`
	EntIOB     string `json:"ent_iob,omitempty"`
	EntType    string `json:"ent_type,omitempty"`
}

type matchJSON struct {
	Rule  string `json:"rule"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type tokenizeResponse struct {
	Tokens []tokenJSON `json:"tokens"`
}

type matchResponse struct {
	Matches []matchJSON `json:"matches"`
}

type entitiesResponse struct {
	Tokens   []tokenJSON `json:"tokens"`
	Entities []matchJSON `json:"entities"`
}

type rulesResponse struct {
	Rules []string `json:"rules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func iobName(iob spandex.IOB) string {
	switch iob {
	case spandex.IOBBegin:
		return "B"
	case spandex.IOBIn:
		return "I"
	default:
		return "O"
	}
}

func toTokensJSON(d *spandex.Doc, withEnts bool) []tokenJSON {
	out := make([]tokenJSON, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		tok, _ := d.TokenAt(i)
		lex := tok.Lexeme()
		tj := tokenJSON{
			Text:       tok.Text(),
			Idx:        tok.Idx(),
			Whitespace: tok.HasSpace(),
			IsAlpha:    lex.IsAlpha,
			IsDigit:    lex.IsDigit,
			IsPunct:    lex.IsPunct,
			IsTitle:    lex.IsTitle,
			LikeNum:    lex.LikeNum,
		}
		if withEnts {
			tj.EntIOB = iobName(tok.EntIOB())
			if tok.EntType() != 0 {
				if name, err := d.Vocab().Strings.Resolve(tok.EntType()); err == nil {
					tj.EntType = name
				}
			}
		}
		out = append(out, tj)
	}
	return out
}

func toMatchesJSON(d *spandex.Doc, matches []spandex.Match) []matchJSON {
	out := make([]matchJSON, 0, len(matches))
	for _, m := range matches {
		rule, err := d.Vocab().Strings.Resolve(m.RuleID)
		if err != nil {
			rule = "?"
		}
		span, _ := d.Slice(m.Start, m.End)
		out = append(out, matchJSON{Rule: rule, Start: m.Start, End: m.End, Text: span.Text()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, log *zap.Logger) {
	writeJSON(w, status, errorResponse{Error: msg}, log)
}

func readText(w http.ResponseWriter, r *http.Request, log *zap.Logger) (string, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required", log)
		return "", false
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'text' field", log)
		return "", false
	}
	return body.Text, true
}

// ---- handlers -----------------------------------------------------------

func handleTokenize(v *spandex.Vocab, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := readText(w, r, log)
		if !ok {
			return
		}
		d, err := spandex.Tokenize(v, text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), log)
			return
		}
		writeJSON(w, http.StatusOK, tokenizeResponse{Tokens: toTokensJSON(d, false)}, log)
	}
}

func handleMatch(v *spandex.Vocab, rs *spandex.RuleSet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := readText(w, r, log)
		if !ok {
			return
		}
		d, err := spandex.Tokenize(v, text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), log)
			return
		}
		matches := rs.Match(d)
		log.Debug("matched", zap.Int("tokens", d.Len()), zap.Int("matches", len(matches)))
		writeJSON(w, http.StatusOK, matchResponse{Matches: toMatchesJSON(d, matches)}, log)
	}
}

func handleEntities(v *spandex.Vocab, rs *spandex.RuleSet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := readText(w, r, log)
		if !ok {
			return
		}
		d, err := spandex.Tokenize(v, text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), log)
			return
		}
		matches := rs.Match(d)
		spans := spandex.FilterSpans(spandex.SpansFromMatches(d, matches))
		if err := d.SetEntities(spans); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), log)
			return
		}
		ents := make([]spandex.Match, 0, len(spans))
		for _, s := range spans {
			ents = append(ents, spandex.Match{RuleID: s.Label(), Start: s.Start, End: s.End})
		}
		writeJSON(w, http.StatusOK, entitiesResponse{
			Tokens:   toTokensJSON(d, true),
			Entities: toMatchesJSON(d, ents),
		}, log)
	}
}

func handleRules(rs *spandex.RuleSet, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required", log)
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{Rules: rs.IDs()}, log)
	}
}

// ---- main ---------------------------------------------------------------

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	rulesPath := flag.String("rules", "", "path to JSON rule file (overrides config)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := defaultConfig()
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			log.Fatal("load config", zap.String("path", *configPath), zap.Error(err))
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *rulesPath != "" {
		cfg.Rules = *rulesPath
	}

	vocab := spandex.NewVocab()

	f, err := os.Open(cfg.Rules)
	if err != nil {
		log.Fatal("open rule file", zap.String("path", cfg.Rules), zap.Error(err))
	}
	rs, err := spandex.LoadRules(vocab, f)
	f.Close()
	if err != nil {
		log.Fatal("compile rules", zap.String("path", cfg.Rules), zap.Error(err))
	}
	log.Info("rules loaded", zap.String("path", cfg.Rules), zap.Strings("ids", rs.IDs()))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tokenize", handleTokenize(vocab, log))
	mux.HandleFunc("/api/match", handleMatch(vocab, rs, log))
	mux.HandleFunc("/api/entities", handleEntities(vocab, rs, log))
	mux.HandleFunc("/api/rules", handleRules(rs, log))

	handler := http.Handler(mux)
	if len(cfg.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(handler)
	}

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
