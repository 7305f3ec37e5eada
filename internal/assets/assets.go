// Package assets resolves sprite keys to terminal glyphs from YAML glyph
// sheets. A sheet embedded in the binary is always loaded; a user sheet can
// override or add entries.
package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
)

const sheetFile = "sprites.yaml"

//go:embed sheets/default.yaml
var defaultSheet []byte

// Entry is one sprite definition in a sheet.
type Entry struct {
	Kind   string   `yaml:"kind"`
	Level  int      `yaml:"level,omitempty"`  // Zero matches any level
	Facing string   `yaml:"facing,omitempty"` // Empty matches any facing
	Frames []string `yaml:"frames"`
	Color  string   `yaml:"color"`
	Label  string   `yaml:"label,omitempty"`
}

// Sheet is a parsed glyph sheet.
type Sheet struct {
	Sprites []Entry `yaml:"sprites"`
}

// ParseSheet decodes a glyph sheet.
func ParseSheet(data []byte) (Sheet, error) {
	var s Sheet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Sheet{}, fmt.Errorf("assets: cannot parse sheet: %w", err)
	}
	return s, nil
}

type matchKey struct {
	kind   string
	level  int
	facing string
}

type frames struct {
	glyphs []rune
	color  core.Color
	label  string
}

// Resolver implements game.SpriteResolver over one or more sheets.
// It is read-only after construction and safe for concurrent use.
type Resolver struct {
	entries map[matchKey]frames
	logger  *log.Logger
}

var _ game.SpriteResolver = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for sheet warnings.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver builds a resolver from sheets; later sheets override earlier ones.
// Invalid entries are skipped with a warning.
func NewResolver(sheets []Sheet, opts ...Option) *Resolver {
	r := &Resolver{
		entries: make(map[matchKey]frames),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, s := range sheets {
		for i, e := range s.Sprites {
			if err := r.add(e); err != nil {
				r.logger.Warn("skipping sprite", "index", i, "kind", e.Kind, "error", err)
			}
		}
	}
	return r
}

func (r *Resolver) add(e Entry) error {
	if e.Kind == "" {
		return errors.New("missing kind")
	}
	if len(e.Frames) == 0 {
		return errors.New("no frames")
	}
	f := frames{label: e.Label}
	for _, s := range e.Frames {
		g, size := utf8.DecodeRuneInString(s)
		if g == utf8.RuneError || size != len(s) {
			return fmt.Errorf("frame %q is not a single glyph", s)
		}
		f.glyphs = append(f.glyphs, g)
	}
	color, ok := core.ParseColor(e.Color)
	if !ok && e.Color != "" {
		return fmt.Errorf("unknown color %q", e.Color)
	}
	f.color = color
	facing := strings.ToLower(e.Facing)
	switch facing {
	case "", "down", "up", "left", "right":
	default:
		return fmt.Errorf("unknown facing %q", e.Facing)
	}
	r.entries[matchKey{kind: e.Kind, level: e.Level, facing: facing}] = f
	return nil
}

// Resolve finds the most specific entry for key: exact level and facing,
// then level only, then facing only, then kind only.
func (r *Resolver) Resolve(key game.SpriteKey) (game.Sprite, bool) {
	facing := key.Facing.String()
	candidates := [...]matchKey{
		{key.Kind, key.Level, facing},
		{key.Kind, key.Level, ""},
		{key.Kind, 0, facing},
		{key.Kind, 0, ""},
	}
	for _, c := range candidates {
		f, ok := r.entries[c]
		if !ok {
			continue
		}
		i := key.Frame
		if i < 0 {
			i = 0
		}
		if i >= len(f.glyphs) {
			i = len(f.glyphs) - 1
		}
		return game.Sprite{Glyph: f.glyphs[i], Color: f.color, Label: f.label}, true
	}
	r.logger.Debug("no sprite", "kind", key.Kind, "level", key.Level, "facing", facing)
	return game.Sprite{}, false
}

// Len returns the number of sprite entries.
func (r *Resolver) Len() int { return len(r.entries) }

// Load builds a resolver from the embedded sheet plus an override sheet.
// Search order for the override: customPath -> ~/.bastion/sprites.yaml -> ./configs/sprites.yaml.
// A broken custom path is an error; broken implicit overrides are logged and ignored.
func Load(customPath string, opts ...Option) (*Resolver, error) {
	base, err := ParseSheet(defaultSheet)
	if err != nil {
		return nil, err
	}
	sheets := []Sheet{base}

	r := NewResolver(nil, opts...)
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("assets: failed to read %s: %w", customPath, err)
		}
		s, err := ParseSheet(data)
		if err != nil {
			return nil, fmt.Errorf("assets: %s: %w", customPath, err)
		}
		sheets = append(sheets, s)
		r.logger.Info("loaded glyph sheet", "path", customPath, "sprites", len(s.Sprites))
	} else {
		for _, p := range overridePaths() {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			s, err := ParseSheet(data)
			if err != nil {
				r.logger.Warn("ignoring glyph sheet", "path", p, "error", err)
				continue
			}
			sheets = append(sheets, s)
			r.logger.Info("loaded glyph sheet", "path", p, "sprites", len(s.Sprites))
			break
		}
	}
	return NewResolver(sheets, WithLogger(r.logger)), nil
}

// Default returns a resolver for the embedded sheet only.
func Default(opts ...Option) *Resolver {
	base, err := ParseSheet(defaultSheet)
	if err != nil {
		return NewResolver(nil, opts...)
	}
	return NewResolver([]Sheet{base}, opts...)
}

func overridePaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".bastion", sheetFile))
	}
	return append(paths, filepath.Join("configs", sheetFile))
}
