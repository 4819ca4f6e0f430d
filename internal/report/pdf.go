package report

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// PDF export: HTML → PDF via wkhtmltopdf or headless chromium
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine converts HTML to PDF.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // write HTML instead
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// PDFConfig holds configuration for PDF generation.
type PDFConfig struct {
	Engine     PDFEngine // empty: auto-detect
	PageSize   string    // default: "A4"
	Landscape  bool
	OutputPath string // required
	lookPath   func(string) (string, error)
	runCommand func(name string, args ...string) ([]byte, error)
}

// DefaultPDFConfig returns A4 landscape, which fits the comps table.
func DefaultPDFConfig(output string) PDFConfig {
	return PDFConfig{PageSize: "A4", Landscape: true, OutputPath: output}
}

func (c PDFConfig) look(name string) (string, error) {
	if c.lookPath != nil {
		return c.lookPath(name)
	}
	return exec.LookPath(name)
}

func (c PDFConfig) run(name string, args ...string) ([]byte, error) {
	if c.runCommand != nil {
		return c.runCommand(name, args...)
	}
	return exec.Command(name, args...).CombinedOutput()
}

// detect returns the first available engine and its binary path.
func (c PDFConfig) detect() (PDFEngine, string) {
	if p, err := c.look("wkhtmltopdf"); err == nil {
		return EngineWKHTML, p
	}
	for _, name := range chromiumBinaries {
		if p, err := c.look(name); err == nil {
			return EngineChromium, p
		}
	}
	return EngineNone, ""
}

// WritePDF converts html into cfg.OutputPath. When no engine is installed the
// HTML is written next to it with an .html extension and the returned path
// says so.
func WritePDF(html string, cfg PDFConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", fmt.Errorf("output path is required")
	}
	if cfg.PageSize == "" {
		cfg.PageSize = "A4"
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	engine, bin := cfg.detect()
	if cfg.Engine == EngineNone {
		engine = EngineNone
	}
	if engine == EngineNone {
		out := strings.TrimSuffix(cfg.OutputPath, filepath.Ext(cfg.OutputPath)) + ".html"
		if err := os.WriteFile(out, []byte(html), 0644); err != nil {
			return "", fmt.Errorf("writing HTML fallback: %w", err)
		}
		return out, nil
	}

	tmp, err := os.CreateTemp("", "researchdesk-report-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp HTML: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp HTML: %w", err)
	}
	tmp.Close()

	abs, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}

	var args []string
	switch engine {
	case EngineWKHTML:
		orientation := "Portrait"
		if cfg.Landscape {
			orientation = "Landscape"
		}
		args = []string{"--page-size", cfg.PageSize, "--orientation", orientation,
			"--encoding", "UTF-8", "--enable-local-file-access", "--quiet", tmp.Name(), abs}
	case EngineChromium:
		args = []string{"--headless", "--disable-gpu", "--no-sandbox",
			"--print-to-pdf=" + abs, "--print-to-pdf-no-header"}
		if cfg.Landscape {
			args = append(args, "--landscape")
		}
		args = append(args, "file://"+tmp.Name())
	}
	if output, err := cfg.run(bin, args...); err != nil {
		return "", fmt.Errorf("%s failed: %w\nOutput: %s", engine, err, string(output))
	}
	return abs, nil
}
