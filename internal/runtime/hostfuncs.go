package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/risor-io/risor/object"

	"github.com/jward/paradigm/internal/features"
)

// makeDefaultPatternsFn creates the "default_patterns" host function.
//
// default_patterns() → map[string][]string
//
// Each call returns a fresh map, so scripts may mutate it freely.
func makeDefaultPatternsFn() *object.Builtin {
	return object.NewBuiltin("default_patterns", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("default_patterns", 0, len(args))
		}
		return patternMapToObject(features.DefaultPatterns())
	})
}

// makeLanguagesFn creates the "languages" host function.
//
// languages() → []string of the language tags recognized by file extension.
func makeLanguagesFn() *object.Builtin {
	return object.NewBuiltin("languages", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("languages", 0, len(args))
		}
		return stringsToList(SupportedLanguages())
	})
}

func patternMapToObject(m map[string][]string) *object.Map {
	out := make(map[string]object.Object, len(m))
	for lang, pats := range m {
		out[lang] = stringsToList(pats)
	}
	return object.NewMap(out)
}

func stringsToList(ss []string) *object.List {
	items := make([]object.Object, len(ss))
	for i, s := range ss {
		items[i] = object.NewString(s)
	}
	return object.NewList(items)
}

// toPatternMap converts a script result into a language → patterns map. The
// result must be a map whose values are lists of strings.
func toPatternMap(obj object.Object) (map[string][]string, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		if obj == nil {
			return nil, fmt.Errorf("expected map result, got nothing")
		}
		return nil, fmt.Errorf("expected map result, got %s", obj.Type())
	}

	items := m.Value()
	langs := make([]string, 0, len(items))
	for lang := range items {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	out := make(map[string][]string, len(items))
	for _, lang := range langs {
		list, ok := items[lang].(*object.List)
		if !ok {
			return nil, fmt.Errorf("patterns for %q: expected list, got %s", lang, items[lang].Type())
		}
		pats := make([]string, 0, len(list.Value()))
		for i, item := range list.Value() {
			s, ok := item.(*object.String)
			if !ok {
				return nil, fmt.Errorf("patterns for %q: item %d: expected string, got %s", lang, i, item.Type())
			}
			pats = append(pats, s.Value())
		}
		out[lang] = pats
	}
	return out, nil
}

// newLogModule provides log.debug/info/warn/error for Risor scripts, backed
// by the engine's slog.Logger.
func newLogModule(logger *slog.Logger) *object.Module {
	level := func(name string, lvl slog.Level) *object.Builtin {
		return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("log."+name, 1, len(args))
			}
			msg, ok := args[0].(*object.String)
			if !ok {
				return object.Errorf("log.%s: message must be a string, got %s", name, args[0].Type())
			}
			logger.Log(ctx, lvl, msg.Value())
			return object.Nil
		})
	}
	return object.NewBuiltinsModule("log", map[string]object.Object{
		"debug": level("debug", slog.LevelDebug),
		"info":  level("info", slog.LevelInfo),
		"warn":  level("warn", slog.LevelWarn),
		"error": level("error", slog.LevelError),
	})
}
