// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.cardstudio/config.toml)
//   - TemplateStore: user-editable card templates (~/.cardstudio/templates/)
package file
