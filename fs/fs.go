package appfs

import "embed"

// FS holds the SQL migrations and the built-in level catalog.
//go:embed migrations/*.sql assets/*
var FS embed.FS

const (
	MigrationsDir    = "migrations"
	LevelsFile       = "assets/levels.yaml"
	LevelsSchemaFile = "assets/levels.schema.json"
)
