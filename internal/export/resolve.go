package export

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// Resolver rewrites shortcode ids to display names and numeric-looking text
// to numbers.
type Resolver struct {
	byID   map[string]domain.Shortcode
	byCode map[string]domain.Shortcode
	lang   domain.Language
}

type ResolverOption func(*Resolver)

// WithCodeFallback also matches cells against shortcode codes when no id
// matches. Older campaigns stored codes instead of ids.
func WithCodeFallback(enabled bool) ResolverOption {
	return func(r *Resolver) {
		if !enabled || r.byID == nil {
			return
		}
		r.byCode = make(map[string]domain.Shortcode, len(r.byID))
		for _, sc := range r.byID {
			if sc.Code != "" {
				r.byCode[sc.Code] = sc
			}
		}
	}
}

// NewResolver builds a resolver over shortcodes keyed by id. A nil map is
// allowed: only numeric coercion is then applied.
func NewResolver(shortcodes map[string]domain.Shortcode, lang domain.Language, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shortcodes == nil {
		logger.Warn("shortcode cache unavailable, resolving numbers only")
	}
	r := &Resolver{byID: shortcodes, lang: domain.CoalesceLanguage(lang)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a new table of the same shape with every cell resolved.
func (r *Resolver) Resolve(table [][]any) [][]any {
	out := make([][]any, len(table))
	for i, row := range table {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = r.ResolveCell(c)
		}
		out[i] = cells
	}
	return out
}

// ResolveCell transforms one cell. Only strings are rewritten; numbers and
// other typed values pass through, so resolving twice changes nothing for
// values that are not shortcode ids.
func (r *Resolver) ResolveCell(cell any) any {
	s, ok := cell.(string)
	if !ok {
		return cell
	}
	key := strings.TrimSpace(s)
	if sc, ok := r.byID[key]; ok && key != "" {
		return sc.DisplayName(r.lang)
	}
	if sc, ok := r.byCode[key]; ok && key != "" {
		return sc.DisplayName(r.lang)
	}
	if n, ok := CoerceNumber(key); ok {
		return n
	}
	return cell
}

// CoerceNumber parses s as a finite number unless it looks like text or a
// composite identifier: empty, containing letters, containing a hyphen and
// longer than 10 characters, or longer than 15 characters.
func CoerceNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 || n > 15 {
		return 0, false
	}
	if strings.Contains(s, "-") && n > 10 {
		return 0, false
	}
	if strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
