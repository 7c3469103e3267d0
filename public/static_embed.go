package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// StaticFS returns the embedded stylesheet directory rooted at static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
