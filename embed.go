package surveyweb

import "embed"

// EmailFS holds the email templates, one directory per message.
//
//go:embed templates/emails
var EmailFS embed.FS

// ViewFS holds the server-rendered HTML views.
//
//go:embed templates/views
var ViewFS embed.FS

//go:embed locales
var LocaleFS embed.FS

//go:embed migrations
var MigrationFS embed.FS
