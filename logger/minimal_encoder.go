package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette is one console color scheme.
type palette struct {
	time   string
	fg     string
	accent string
	id     string
	number string
	warn   string
	warnBg string
	err    string
	errBg  string
	dim    string
	comps  []string
}

var themes = map[string]palette{
	// Gruvbox Dark (warm, muted)
	"gruvbox": {
		time:   "\x1b[38;5;108m",
		fg:     "\x1b[38;5;223m",
		accent: "\x1b[38;5;208m",
		id:     "\x1b[38;5;109m",
		number: "\x1b[38;5;175m",
		warn:   "\x1b[38;5;214m",
		warnBg: "\x1b[48;5;58m",
		err:    "\x1b[38;5;167m",
		errBg:  "\x1b[48;5;88m",
		dim:    "\x1b[38;5;245m",
		comps:  []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
	},
	// Everforest Dark (forest greens)
	"everforest": {
		time:   "\x1b[38;5;107m",
		fg:     "\x1b[38;5;223m",
		accent: "\x1b[38;5;208m",
		id:     "\x1b[38;5;109m",
		number: "\x1b[38;5;108m",
		warn:   "\x1b[38;5;179m",
		warnBg: "\x1b[48;5;58m",
		err:    "\x1b[38;5;167m",
		errBg:  "\x1b[48;5;52m",
		dim:    "\x1b[38;5;245m",
		comps:  []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	},
}

// Current active theme
var currentTheme = "gruvbox"

// SetTheme configures the color scheme for log output
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette { return themes[currentTheme] }

// idFields are rendered in the ID color, numberFields in the number color.
var (
	idFields     = map[string]bool{FieldRunID: true, FieldKey: true, FieldArtifact: true, FieldStage: true}
	numberFields = map[string]bool{FieldDurationMS: true, FieldCount: true, FieldExecuted: true, FieldReused: true, FieldAdded: true, FieldChanged: true, FieldRemoved: true}
)

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  p.driver  Run published  stage=resources.parse executed=2"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if lvl := levelColorString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(componentColor(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rendered := renderFields(fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	default:
		return ""
	}
}

func componentColor(name string) string {
	comps := colors().comps
	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	return comps[hash%len(comps)]
}

// abbreviateName shortens component names: pipeline.driver -> p.driver
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// renderFields writes every field as key=value; none are dropped.
func renderFields(fields []zapcore.Field) string {
	if len(fields) == 0 {
		return ""
	}
	mem := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(mem)
	}
	keys := make([]string, 0, len(mem.Fields))
	for k := range mem.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := colors()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		color := c.dim
		switch {
		case idFields[k]:
			color = c.id
		case numberFields[k]:
			color = c.number
		case k == FieldError:
			color = c.err
		}
		parts = append(parts, fmt.Sprintf("%s%s=%v%s", color, k, mem.Fields[k], colorReset))
	}
	return strings.Join(parts, " ")
}
