// Package tools implements the built-in handlers behind the default
// descriptor table: sandboxed filesystem access, system information,
// application launching, web search, email, and persistent memory.
//
// Handlers report their own domain failures as result text. The error
// return is reserved for unexpected I/O problems; the dispatcher turns
// those into text too, so nothing here can abort a turn.
package tools

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// allowedReadExtensions lists the file types Read will open. Everything
// else is refused so binary content never lands in the conversation.
var allowedReadExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".log": true,
	".py": true, ".js": true, ".go": true, ".html": true, ".css": true,
	".xml": true, ".yaml": true, ".yml": true,
}

// maxReadChars caps how many characters Read returns from one file.
const maxReadChars = 10000

// Workspace confines the filesystem tools to a single directory tree.
// Every path argument is resolved relative to the root and checked
// again after symlink resolution; anything that lands outside the tree
// is refused.
type Workspace struct {
	root string
}

// NewWorkspace creates the sandbox root if needed and pins it to an
// absolute, symlink-resolved path.
func NewWorkspace(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("workspace root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return &Workspace{root: resolved}, nil
}

// Root returns the absolute sandbox root.
func (w *Workspace) Root() string {
	if w == nil {
		return ""
	}
	return w.root
}

// resolve validates rel against the sandbox and returns the absolute
// path inside it. The empty string and "." address the root itself.
func (w *Workspace) resolve(rel string) (string, error) {
	cleaned := strings.TrimSpace(rel)
	if cleaned == "" || cleaned == "." {
		return w.root, nil
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}
	cleaned = filepath.Clean(cleaned)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the workspace: %s", rel)
	}

	candidate := filepath.Join(w.root, cleaned)

	// Resolve symlinks on the candidate when it exists, otherwise on
	// its nearest existing ancestor with the remainder rejoined, so a
	// link cannot smuggle the path outside the tree.
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		dir, rest := candidate, ""
		for {
			rest = filepath.Join(filepath.Base(dir), rest)
			dir = filepath.Dir(dir)
			if r, evalErr := filepath.EvalSymlinks(dir); evalErr == nil {
				resolved = filepath.Join(r, rest)
				break
			}
			if dir == filepath.Dir(dir) {
				return "", fmt.Errorf("cannot resolve path: %s", rel)
			}
		}
	}

	relPath, err := filepath.Rel(w.root, resolved)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the workspace: %s", rel)
	}
	return resolved, nil
}

// displayName renders abs relative to the root for result texts; the
// root itself displays as ".".
func (w *Workspace) displayName(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == "." {
		return "."
	}
	return rel
}

// List lists files and subdirectories of a workspace path. Entries are
// prefixed [D] or [F] and sorted, directories first.
func (w *Workspace) List(ctx context.Context, relPath, _ string) (string, error) {
	if w == nil {
		return "Error: Workspace directory not available.", nil
	}
	abs, err := w.resolve(relPath)
	if err != nil {
		return fmt.Sprintf("Error: Invalid or disallowed workspace path '%s'.", relPath), nil
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return fmt.Sprintf("Error: Workspace path '%s' does not exist.", relPath), nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", relPath, err)
	}
	if !info.IsDir() {
		return fmt.Sprintf("Error: Workspace path '%s' is not a directory.", relPath), nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Sprintf("Error: Permission denied trying to list workspace directory '%s'.", relPath), nil
	}

	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		prefix := "[F]"
		if entry.IsDir() {
			prefix = "[D]"
		}
		items = append(items, prefix+" "+entry.Name())
	}
	sort.Strings(items)

	name := w.displayName(abs)
	if len(items) == 0 {
		return fmt.Sprintf("Workspace directory '%s' is empty.", name), nil
	}
	return fmt.Sprintf("Contents of workspace path '%s':\n- %s", name, strings.Join(items, "\n- ")), nil
}

// Read returns the content of a text file in the workspace, truncated
// to maxReadChars characters.
func (w *Workspace) Read(ctx context.Context, relPath, _ string) (string, error) {
	if w == nil {
		return "Error: Workspace directory not available.", nil
	}
	abs, err := w.resolve(relPath)
	if err != nil {
		return fmt.Sprintf("Error: Invalid or disallowed workspace path '%s'. Cannot read file.", relPath), nil
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return fmt.Sprintf("Error: File '%s' does not exist within the workspace.", relPath), nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' within the workspace is not a file.", relPath), nil
	}

	if ext := strings.ToLower(filepath.Ext(abs)); !allowedReadExtensions[ext] {
		return fmt.Sprintf("Error: Cannot read file '%s'. Only specific text-based files are allowed (extensions: %s).",
			relPath, allowedExtensionList()), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Sprintf("Error: Permission denied trying to read file '%s'.", relPath), nil
	}
	if !utf8.Valid(data) {
		return fmt.Sprintf("Error: Could not read file '%s' as UTF-8 text. It might be binary or have an incompatible encoding.", relPath), nil
	}

	content := string(data)
	name := w.displayName(abs)
	if runes := []rune(content); len(runes) > maxReadChars {
		return fmt.Sprintf("Content of workspace file '%s' (truncated to %d characters):\n\n%s\n\n[... File truncated ...]",
			name, maxReadChars, string(runes[:maxReadChars])), nil
	}
	return fmt.Sprintf("Content of workspace file '%s':\n\n%s", name, content), nil
}

// Write writes (or overwrites) plain text content to a workspace file.
// The parent directory must already exist.
func (w *Workspace) Write(ctx context.Context, relPath, content string) (string, error) {
	if w == nil {
		return "Error: Workspace directory not available.", nil
	}
	abs, err := w.resolve(relPath)
	if err != nil {
		return fmt.Sprintf("Error: Invalid or disallowed workspace path '%s'. Cannot write file.", relPath), nil
	}
	if abs == w.root {
		return "Error: Cannot write directly to the root workspace directory. Please specify a filename.", nil
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return fmt.Sprintf("Error: Cannot write file. Path '%s' already exists as a directory in the workspace.", relPath), nil
	}

	parent := filepath.Dir(abs)
	parentInfo, err := os.Stat(parent)
	if os.IsNotExist(err) {
		parentName := w.displayName(parent)
		return fmt.Sprintf("Error: Parent directory '%s' does not exist in the workspace. Please create it first using [FS_MKDIR: %s].",
			parentName, parentName), nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", parent, err)
	}
	if !parentInfo.IsDir() {
		return fmt.Sprintf("Error: Cannot write file. The parent path '%s' exists but is not a directory.", w.displayName(parent)), nil
	}

	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error: Permission denied trying to write to file '%s'.", relPath), nil
	}
	return fmt.Sprintf("Successfully wrote plain text content to workspace file '%s'.", w.displayName(abs)), nil
}

// Mkdir creates a directory (including intermediate ones) in the
// workspace.
func (w *Workspace) Mkdir(ctx context.Context, relPath, _ string) (string, error) {
	if w == nil {
		return "Error: Workspace directory not available.", nil
	}
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" || filepath.Clean(trimmed) == "." {
		return "Error: Cannot create directory with an empty name or just '.'.", nil
	}
	abs, err := w.resolve(relPath)
	if err != nil {
		return fmt.Sprintf("Error: Invalid or disallowed workspace path '%s'. Cannot create directory.", relPath), nil
	}
	if abs == w.root {
		return "Error: Cannot explicitly create the root workspace directory.", nil
	}

	name := w.displayName(abs)
	if info, err := os.Stat(abs); err == nil {
		if info.IsDir() {
			return fmt.Sprintf("Workspace directory '%s' already exists.", name), nil
		}
		return fmt.Sprintf("Error: Cannot create directory. Path '%s' already exists as a file in the workspace.", name), nil
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Sprintf("Error: Permission denied trying to create directory '%s'.", relPath), nil
	}
	return fmt.Sprintf("Successfully created workspace directory '%s'.", name), nil
}

// Find walks the tree under a workspace start path and returns the
// files whose name or start-relative path matches the glob pattern.
func (w *Workspace) Find(ctx context.Context, startPath, pattern string) (string, error) {
	if w == nil {
		return "Error: Workspace directory not available.", nil
	}
	cleanedPattern := strings.TrimSpace(pattern)
	if cleanedPattern == "" {
		return "Error: Search pattern cannot be empty.", nil
	}
	if strings.HasPrefix(cleanedPattern, "/") || strings.HasPrefix(cleanedPattern, `\`) || strings.Contains(cleanedPattern, ":") {
		return "Error: Search pattern should be relative (e.g., '*.txt', 'reports/*.pdf').", nil
	}
	if _, err := path.Match(cleanedPattern, ""); err != nil {
		return fmt.Sprintf("Error: Search pattern '%s' is not a valid glob.", pattern), nil
	}

	startAbs, err := w.resolve(startPath)
	if err != nil {
		return fmt.Sprintf("Error: Invalid or disallowed workspace start path '%s'. Cannot search.", startPath), nil
	}
	if info, err := os.Stat(startAbs); err != nil || !info.IsDir() {
		return fmt.Sprintf("Error: Workspace start path '%s' is not a directory.", startPath), nil
	}

	var found []string
	err = filepath.WalkDir(startAbs, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, _ := path.Match(cleanedPattern, d.Name())
		if !matched {
			relToStart, relErr := filepath.Rel(startAbs, p)
			if relErr == nil {
				matched, _ = path.Match(cleanedPattern, filepath.ToSlash(relToStart))
			}
		}
		if matched {
			if relToRoot, relErr := filepath.Rel(w.root, p); relErr == nil {
				found = append(found, relToRoot)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", startPath, err)
	}

	startName := w.displayName(startAbs)
	if len(found) == 0 {
		return fmt.Sprintf("No files found matching pattern '%s' within workspace path '%s'.", pattern, startName), nil
	}
	sort.Strings(found)
	return fmt.Sprintf("Files found matching '%s' in workspace path '%s':\n- %s",
		pattern, startName, strings.Join(found, "\n- ")), nil
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedReadExtensions))
	for ext := range allowedReadExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
