// Package markdown renders blog and service bodies and reads the embedded
// seed documents (YAML frontmatter followed by Markdown).
package markdown
