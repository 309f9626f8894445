package pipeline

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/geniehq/genie/internal/config"
	"github.com/geniehq/genie/internal/logging"
)

// formatTimeout bounds a single formatter subprocess. Hitting it degrades
// to unformatted content like every other formatter failure.
const formatTimeout = 30 * time.Second

// Formatter runs the external code formatter over generated content. The
// formatter is a black box: content goes in on stdin, formatted content
// comes out on stdout, and any spawn failure, non-zero exit, or timeout
// means the unformatted content is used instead. Formatting is never fatal.
type Formatter struct {
	command     string
	configNames []string
	extensions  map[string]struct{}
	logger      logging.Logger

	// configCache memoizes the resolved formatter config path. Safe under
	// concurrent first-computations: all racers converge on the same value.
	configCache struct {
		mu          sync.RWMutex
		initialized bool
		path        string
	}
}

// NewFormatter creates a formatter from configuration.
func NewFormatter(cfg config.FormatterConfig, logger logging.Logger) *Formatter {
	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[ext] = struct{}{}
	}

	return &Formatter{
		command:     cfg.Command,
		configNames: cfg.ConfigNames,
		extensions:  extensions,
		logger:      logger.WithComponent("formatter"),
	}
}

// Formattable reports whether the target's extension is in the formatted
// set.
func (f *Formatter) Formattable(target string) bool {
	_, ok := f.extensions[filepath.Ext(target)]

	return ok
}

// Format pipes content through the formatter subprocess, passing the
// target's virtual filename so filename-sensitive rules apply. On any
// failure the original content is returned.
func (f *Formatter) Format(ctx context.Context, cwd, target, content string) string {
	if !f.Formattable(target) {
		return content
	}

	ctx, cancel := context.WithTimeout(ctx, formatTimeout)
	defer cancel()

	args := make([]string, 0, 4)
	if configPath := f.resolveConfigPath(cwd); configPath != "" {
		args = append(args, "-c", configPath)
	}
	args = append(args, "--stdin-filepath", target)

	cmd := exec.CommandContext(ctx, f.command, args...)
	cmd.Dir = cwd
	cmd.Stdin = strings.NewReader(content)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		f.logger.Debug(ctx, "formatter unavailable, using unformatted content",
			"target", target, "error", err.Error())

		return content
	}

	return stdout.String()
}

// resolveConfigPath finds the formatter config by walking upward from cwd
// for the first matching config name. The result (possibly empty) is
// computed once and memoized process-wide.
func (f *Formatter) resolveConfigPath(cwd string) string {
	f.configCache.mu.RLock()
	if f.configCache.initialized {
		path := f.configCache.path
		f.configCache.mu.RUnlock()

		return path
	}
	f.configCache.mu.RUnlock()

	f.configCache.mu.Lock()
	defer f.configCache.mu.Unlock()

	// Double-check: another goroutine may have resolved while waiting.
	if f.configCache.initialized {
		return f.configCache.path
	}

	f.configCache.path = f.findConfig(cwd)
	f.configCache.initialized = true

	return f.configCache.path
}

func (f *Formatter) findConfig(dir string) string {
	for cur := dir; ; {
		for _, name := range f.configNames {
			candidate := filepath.Join(cur, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}
