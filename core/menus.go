package core

import "strings"

// PathPlaceholder is replaced with the file's full path in menu arguments.
const PathPlaceholder = "{path}"

// ExpandMenus builds the context menu of the file at path.
// Arguments are split on whitespace before substitution so paths
// containing spaces stay a single argument.
func ExpandMenus(templates []ContextMenuTemplate, path string) []MenuItem {
	if len(templates) == 0 {
		return nil
	}
	items := make([]MenuItem, 0, len(templates))
	for _, t := range templates {
		fields := strings.Fields(t.Argument)
		args := make([]string, len(fields))
		for i, f := range fields {
			args[i] = strings.ReplaceAll(f, PathPlaceholder, path)
		}
		items = append(items, MenuItem{
			Title:   t.Name,
			IconRef: IconMenu,
			Command: t.Command,
			Args:    args,
		})
	}
	return items
}
