package highlight

import (
	"path"
	"strings"
)

// extensions maps lower case file extensions to chroma lexer names.
var extensions = map[string]string{
	".bash":       "bash",
	".c":          "c",
	".cc":         "c++",
	".clj":        "clojure",
	".cpp":        "c++",
	".cs":         "c#",
	".css":        "css",
	".cxx":        "c++",
	".dart":       "dart",
	".diff":       "diff",
	".el":         "emacslisp",
	".erl":        "erlang",
	".ex":         "elixir",
	".exs":        "elixir",
	".fs":         "fsharp",
	".go":         "go",
	".gql":        "graphql",
	".graphql":    "graphql",
	".groovy":     "groovy",
	".h":          "c",
	".hcl":        "hcl",
	".hh":         "c++",
	".hpp":        "c++",
	".hs":         "haskell",
	".htm":        "html",
	".html":       "html",
	".ini":        "ini",
	".java":       "java",
	".jl":         "julia",
	".js":         "javascript",
	".json":       "json",
	".jsx":        "react",
	".kt":         "kotlin",
	".kts":        "kotlin",
	".lua":        "lua",
	".m":          "objective-c",
	".markdown":   "markdown",
	".md":         "markdown",
	".mjs":        "javascript",
	".ml":         "ocaml",
	".mli":        "ocaml",
	".nim":        "nim",
	".nix":        "nix",
	".patch":      "diff",
	".php":        "php",
	".pl":         "perl",
	".pm":         "perl",
	".proto":      "protobuf",
	".ps1":        "powershell",
	".py":         "python",
	".r":          "r",
	".rb":         "ruby",
	".rs":         "rust",
	".scala":      "scala",
	".scss":       "scss",
	".sh":         "bash",
	".sql":        "sql",
	".svelte":     "svelte",
	".swift":      "swift",
	".tex":        "tex",
	".tf":         "terraform",
	".toml":       "toml",
	".ts":         "typescript",
	".tsx":        "tsx",
	".vim":        "vim",
	".vue":        "vue",
	".xml":        "xml",
	".yaml":       "yaml",
	".yml":        "yaml",
	".zig":        "zig",
	".zsh":        "bash",
	".dockerfile": "docker",
	".mk":         "makefile",
	".cmake":      "cmake",
	".gradle":     "groovy",
	".bzl":        "python",
	".sbt":        "scala",
	".svg":        "xml",
	".plist":      "xml",
}

// filenames maps file names without a useful extension.
var filenames = map[string]string{
	"BUILD":          "python",
	"CMakeLists.txt": "cmake",
	"Dockerfile":     "docker",
	"GNUmakefile":    "makefile",
	"Gemfile":        "ruby",
	"Makefile":       "makefile",
	"Rakefile":       "ruby",
	"Vagrantfile":    "ruby",
	"WORKSPACE":      "python",
	"go.mod":         "go",
	"go.sum":         "plaintext",
	"makefile":       "makefile",
	".bashrc":        "bash",
	".zshrc":         "bash",
	".gitconfig":     "ini",
	".editorconfig":  "ini",
}

// Language returns the lexer name for a file, or an empty string when the
// file is not recognized.
func Language(filename string) string {
	base := path.Base(filename)
	if lang, ok := filenames[base]; ok {
		return lang
	}
	return extensions[strings.ToLower(path.Ext(base))]
}
