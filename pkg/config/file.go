package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Soft Pages configuration

# Overrides for the repository name, description and clone URL shown in
# page headers. Leave empty to read them from the repository.
name: "{{ .Name }}"
description: "{{ .Description }}"
url: "{{ .URL }}"

# The branch, tag or commit to generate the site from. Empty means HEAD.
ref: "{{ .Ref }}"

# The number of commits rendered concurrently. 0 means one per CPU.
workers: {{ .Workers }}

# The maximum number of commits listed and rendered. 0 means all of them.
max_commits: {{ .MaxCommits }}

# Repository paths that are listed but get no page.
#exclude:
#  - "vendor"
#  - "**.min.js"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# Syntax highlighting.
highlight:
  # The chroma style name.
  style: "{{ .Highlight.Style }}"
  # Add linkable line numbers to file pages.
  line_numbers: {{ .Highlight.LineNumbers }}
  # The number of columns a tab expands to.
  tab_width: {{ .Highlight.TabWidth }}

# Commit diffs.
diff:
  # Unchanged lines shown around a change.
  context_lines: {{ .Diff.ContextLines }}
  # Files needing more line edits are shown as a wholesale replacement.
  max_edits: {{ .Diff.MaxEdits }}

# The object cache.
cache:
  # The number of decoded objects kept in memory.
  size: {{ .Cache.Size }}

# Run statistics.
stats:
  # Write run counters to this file in the Prometheus text format.
  #path: "{{ .Stats.Path }}"

# The preview server.
preview:
  # The address on which the preview server will listen.
  listen_addr: "{{ .Preview.ListenAddr }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
