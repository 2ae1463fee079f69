package engine

import (
	"regexp"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/execx"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/progress"
)

// Item は未翻訳テキスト 1 件を表す
type Item struct {
	File    string         `json:"file"`
	Grammar detect.Grammar `json:"grammar"`
	Kind    model.SpanKind `json:"kind"`
	Quoted  bool           `json:"quoted"`
	Text    string         `json:"text"`
	Line    int            `json:"line"`
	Column  int            `json:"column"`
	Start   int            `json:"start"`
	End     int            `json:"end"`
	Range   model.Range    `json:"range"`
	URL     string         `json:"url,omitempty"`
}

// ItemError は 1 ファイルの処理に失敗した際の情報を表す
type ItemError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Options は実行オプション
type Options struct {
	RepoDir           string
	Paths             []string
	Excludes          []string
	PathRegex         []string
	PathRegexCompiled []*regexp.Regexp
	ExcludeTypical    bool
	Jobs              int
	MaxFileBytes      int
	NoPrefilter       bool
	Strict            bool
	WithURL           bool
	Truncate          int
	Extensions        map[string]detect.Grammar

	Progress         bool
	ProgressObserver progress.Observer `json:"-"`
	Logger           *zerolog.Logger   `json:"-"`
	Tracer           trace.Tracer      `json:"-"`
	Runner           execx.Runner      `json:"-"`
}

// Result は出力
type Result struct {
	ScanID     string      `json:"scan_id"`
	Items      []Item      `json:"items"`
	HasURL     bool        `json:"has_url"`
	Total      int         `json:"total"`
	Files      int         `json:"files"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	Errors     []ItemError `json:"errors,omitempty"`
	ErrorCount int         `json:"error_count"`
}
