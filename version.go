package formlingo

// Release builds stamp these from git, e.g.:
//
//	PKG=github.com/ZaguanLabs/formlingo
//	go build -ldflags "-X $PKG.Version=$(git describe --tags --always) \
//	  -X $PKG.GitCommit=$(git rev-parse HEAD) \
//	  -X $PKG.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/formlingo
//
// The stamped version shows in `formlingo version`, the web UI footer and
// the User-Agent sent to the backend and the relay.
var (
	// Version is the release version; development builds report the
	// next planned release.
	Version = "0.1.0"

	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"

	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)

// Name is the application name.
const Name = "formlingo"

// FullVersion returns the version with the short commit appended when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent for outbound requests.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
