package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/dyntable/internal/ui"
)

// generate_index renders README.md into <dist-dir>/index.html with a downloads table
// for the release archives and a key reference built from the default bindings.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}

	distDir := os.Args[1]
	indexPath := filepath.Join(distDir, "index.html")

	readmeContent, err := os.ReadFile("README.md")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading README.md: %v\n", err)
		os.Exit(1)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(readmeContent)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	readmeHTML := string(markdown.Render(doc, renderer))

	version := detectVersionFromDist(distDir)
	readmeHTML = replaceSection(readmeHTML, "installation", installationHTML(downloadsHTML(distDir, version)))
	readmeHTML = replaceSection(readmeHTML, "keys", keyReferenceHTML())

	f, err := os.Create(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating index.html: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	writeHeader(f)
	if _, err := io.WriteString(f, readmeHTML); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing README content: %v\n", err)
		os.Exit(1)
	}
	writeFooter(f)

	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
}

var archivePattern = regexp.MustCompile(`^dyntable_([^_]+(?:-[^_]+)*)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(?:tar\.gz|zip)$`)

// detectVersionFromDist finds the version string from files like dyntable_0.1.0_Linux_x86_64.tar.gz.
func detectVersionFromDist(distDir string) string {
	files, err := os.ReadDir(distDir)
	if err != nil {
		return "unknown"
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if m := archivePattern.FindStringSubmatch(file.Name()); len(m) >= 2 {
			return m[1]
		}
	}
	return "unknown"
}

var platformNames = map[string]string{
	"Darwin_arm64":   "macOS (Apple Silicon)",
	"Darwin_x86_64":  "macOS (Intel)",
	"Linux_arm64":    "Linux (ARM64)",
	"Linux_x86_64":   "Linux (x86_64)",
	"Windows_arm64":  "Windows (ARM64)",
	"Windows_x86_64": "Windows (x86_64)",
}

// downloadsHTML lists one archive per platform found in distDir.
func downloadsHTML(distDir, version string) string {
	archives := map[string]string{}
	if files, err := os.ReadDir(distDir); err == nil {
		for _, file := range files {
			m := archivePattern.FindStringSubmatch(file.Name())
			if len(m) < 4 {
				continue
			}
			key := m[2] + "_" + m[3]
			if _, seen := archives[key]; !seen {
				archives[key] = file.Name()
			}
		}
	}
	keys := make([]string, 0, len(archives))
	for k := range archives {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("<div class=\"downloads\">\n")
	fmt.Fprintf(&sb, "  <h3>%s</h3>\n  <table class=\"download-table\">\n", html.EscapeString(version))
	for _, k := range keys {
		fmt.Fprintf(&sb, "    <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">download</a></td></tr>\n",
			platformNames[k], html.EscapeString(archives[k]))
	}
	sb.WriteString("  </table>\n</div>\n")
	return sb.String()
}

func installationHTML(downloads string) string {
	return `<h2 id="installation">Installation</h2>
` + downloads + `
<p>Extract the archive and move the binary to your PATH:</p>
<pre><code class="language-bash">tar -xzf dyntable_*.tar.gz
sudo mv dyntable /usr/local/bin/
</code></pre>
`
}

// keyReferenceHTML renders the default vim and emacs bindings side by side.
func keyReferenceHTML() string {
	vim, err := ui.NewKeyMap(ui.KeyModeVim, nil)
	if err != nil {
		return ""
	}
	emacs, err := ui.NewKeyMap(ui.KeyModeEmacs, nil)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<h2 id=\"keys\">Keys</h2>\n<table class=\"keys\">\n")
	sb.WriteString("  <tr><th>Action</th><th>vim</th><th>emacs</th></tr>\n")
	for _, a := range ui.Actions {
		fmt.Fprintf(&sb, "  <tr><td>%s</td><td><code>%s</code></td><td><code>%s</code></td></tr>\n",
			html.EscapeString(a.Description()),
			html.EscapeString(strings.Join(vim.KeysFor(a), ", ")),
			html.EscapeString(strings.Join(emacs.KeysFor(a), ", ")))
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// replaceSection swaps the README section whose heading has the given id for replacement.
// The section runs until the next h2; a missing heading leaves the document unchanged.
func replaceSection(doc, id, replacement string) string {
	start := strings.Index(doc, `<h2 id="`+id+`">`)
	if start == -1 || replacement == "" {
		return doc
	}
	rest := doc[start+len(id)+10:]
	end := strings.Index(rest, `<h2 id="`)
	if end == -1 {
		return doc[:start] + replacement
	}
	return doc[:start] + replacement + rest[end:]
}

func writeHeader(w io.Writer) {
	fmt.Fprint(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>dyntable - Dynamic tables in the terminal</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 900px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
    h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
    h2 { color: #1e40af; margin-top: 30px; }
    code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    .downloads { background: #eff6ff; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #2563eb; }
    .download-table, .keys { width: 100%; border-collapse: collapse; }
    .download-table td, .keys td, .keys th { padding: 6px 8px; text-align: left; }
    .platform-name { font-weight: 500; color: #1e3a8a; width: 200px; }
  </style>
</head>
<body>
`)
}

func writeFooter(w io.Writer) {
	fmt.Fprint(w, `</body>
</html>
`)
}
