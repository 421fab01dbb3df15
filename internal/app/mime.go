package app

import (
	"log/slog"
	"mime"
)

// staticTypes are the extensions served from web/static. Minimal containers
// ship without /etc/mime.types, so they are registered explicitly.
var staticTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "text/javascript; charset=utf-8",
	".svg": "image/svg+xml",
}

func init() {
	for ext, typ := range staticTypes {
		registerStaticType(ext, typ)
	}
}

func registerStaticType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		slog.Default().Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
	}
}
