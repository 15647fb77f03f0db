// Package version хранит сведения о сборке storefront. Значения подставляются линкером:
//
//	go build -ldflags "\
//	  -X github.com/vladislavdragonenkov/storefront/internal/version.version=v1.4.0 \
//	  -X github.com/vladislavdragonenkov/storefront/internal/version.commit=$(git rev-parse HEAD) \
//	  -X github.com/vladislavdragonenkov/storefront/internal/version.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/storefront
package version

import "fmt"

const (
	devVersion    = "dev"
	unknownValue  = "unknown"
	shortCommitLn = 7
)

var (
	version = devVersion
	commit  = unknownValue
	date    = unknownValue
)

// Build — сведения о сборке.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current возвращает сведения о текущей сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

// ShortCommit возвращает первые семь символов commit.
func (b Build) ShortCommit() string {
	if len(b.Commit) > shortCommitLn {
		return b.Commit[:shortCommitLn]
	}
	return b.Commit
}

// Label — версия для health-ответа: "v1.4.0 (0a1b2c3)", для сборки без commit только версия.
func (b Build) Label() string {
	if b.Commit == "" || b.Commit == unknownValue {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, b.ShortCommit())
}

// Fields — поля стартового лога.
func (b Build) Fields() map[string]any {
	return map[string]any{
		"version":    b.Version,
		"commit":     b.ShortCommit(),
		"build_date": b.Date,
	}
}
