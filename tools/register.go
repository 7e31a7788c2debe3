package tools

import (
	"aide/registry"
)

// Deps carries the constructed tool implementations. Nil fields are
// allowed: the corresponding descriptors still register, and their
// handlers report the capability as unavailable instead.
type Deps struct {
	Workspace *Workspace
	Search    *WebSearch
	Email     *EmailSender
	Memory    *Memory
}

// RegisterDefaults installs the built-in descriptor table. Priorities
// leave room between groups so plugins and future tools can interleave.
func RegisterDefaults(reg *registry.Registry, deps Deps) error {
	descriptors := []registry.ToolDescriptor{
		{
			Name:        "app",
			Marker:      "OPEN_APP",
			Description: "Opens an application on this computer.",
			Pattern:     registry.BracketPattern("OPEN_APP"),
			Priority:    10,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"app_name"},
			Usage:       "[OPEN_APP: app_name]",
			Handler:     OpenApp,
		},
		{
			Name:        "search",
			Marker:      "SEARCH",
			Description: "Searches the web and returns content from the top results.",
			Pattern:     registry.BracketPattern("SEARCH"),
			Priority:    20,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"query"},
			Usage:       "[SEARCH: query]",
			Handler:     deps.Search.Search,
		},
		{
			Name:        "sysinfo",
			Marker:      "SYSINFO",
			Description: "Gets system ('basic') or network ('network') information.",
			Pattern:     registry.BracketPattern("SYSINFO"),
			Priority:    30,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"param"},
			Usage:       "[SYSINFO: basic or network]",
			DefaultArg:  "basic",
			Handler:     SystemInfo,
		},
		{
			Name:        "fs_list",
			Marker:      "FS_LIST",
			Description: "Lists directory contents within the workspace. Use relative paths; '.' is the workspace root.",
			Pattern:     registry.BracketPattern("FS_LIST"),
			Priority:    40,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"relative_path"},
			Usage:       "[FS_LIST: relative_path]",
			Handler:     deps.Workspace.List,
		},
		{
			Name:        "fs_read",
			Marker:      "FS_READ",
			Description: "Reads the content of a text file in the workspace.",
			Pattern:     registry.BracketPattern("FS_READ"),
			Priority:    41,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"relative_path"},
			Usage:       "[FS_READ: relative_path]",
			Handler:     deps.Workspace.Read,
		},
		{
			Name:        "fs_write",
			Marker:      "FS_WRITE",
			Description: "Writes (or overwrites) a plain text file in the workspace.",
			Pattern:     registry.BracketPattern("FS_WRITE"),
			Priority:    42,
			Arity:       registry.ArityTwo,
			ArgKeys:     []string{"relative_path", "content"},
			Usage:       "[FS_WRITE: relative_path | content]",
			Handler:     deps.Workspace.Write,
		},
		{
			Name:        "fs_mkdir",
			Marker:      "FS_MKDIR",
			Description: "Creates a directory (including parents) in the workspace.",
			Pattern:     registry.BracketPattern("FS_MKDIR"),
			Priority:    43,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"relative_path"},
			Usage:       "[FS_MKDIR: relative_path]",
			Handler:     deps.Workspace.Mkdir,
		},
		{
			Name:        "fs_find",
			Marker:      "FS_FIND",
			Description: "Finds workspace files matching a glob pattern, searching recursively.",
			Pattern:     registry.BracketPattern("FS_FIND"),
			Priority:    44,
			Arity:       registry.ArityTwo,
			ArgKeys:     []string{"start_path", "pattern"},
			Usage:       "[FS_FIND: start_path | pattern]",
			Handler:     deps.Workspace.Find,
		},
		{
			Name:        "email",
			Marker:      "EMAIL",
			Description: "Sends email. Argument is 'key:value;' pairs: to:, cc:, bcc:, subject:, body:, attach: (comma-separated workspace paths).",
			Pattern:     registry.BracketPattern("EMAIL"),
			Priority:    50,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"command_string"},
			Usage:       "[EMAIL: command_string]",
			Handler:     deps.Email.Send,
		},
		{
			Name:        "memory_store",
			Marker:      "MEMORY_STORE",
			Description: "Stores a fact in persistent memory. Argument is the text to store, or 'content:<text>'.",
			Pattern:     registry.BracketPattern("MEMORY_STORE"),
			Priority:    60,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"command_string"},
			Usage:       "[MEMORY_STORE: command_string]",
			Handler:     deps.Memory.Store,
		},
		{
			Name:        "memory_query",
			Marker:      "MEMORY_QUERY",
			Description: "Recalls facts from persistent memory. Argument is the query text, or 'query_text:<text>; top_k:<n>; threshold:<f>'.",
			Pattern:     registry.BracketPattern("MEMORY_QUERY"),
			Priority:    61,
			Arity:       registry.ArityOne,
			ArgKeys:     []string{"command_string"},
			Usage:       "[MEMORY_QUERY: command_string]",
			Handler:     deps.Memory.Query,
		},
	}

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
