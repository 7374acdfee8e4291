package internal

import "testing"

// Restores the stamped variables after a test mutates them.
func withVariables(t *testing.T, version, commit, built, static string) {
	t.Helper()
	old := [4]string{Version, GitCommit, BuildTime, IAmStatic}
	Version, GitCommit, BuildTime, IAmStatic = version, commit, built, static
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, IAmStatic = old[0], old[1], old[2], old[3]
	})
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		name                   string
		version, commit, built string
		static                 string
		want                   string
	}{
		{
			name: "local build",
			want: defaultLocalBuild,
		},
		{
			name:    "missing commit",
			version: "0.1.0",
			want:    defaultLocalBuild,
		},
		{
			name:    "dynamic",
			version: "V0.1.0",
			commit:  "0986095",
			want:    "0.1.0 (0986095, " + Platform() + ")",
		},
		{
			name:    "static dirty with build time",
			version: "0.1.0",
			commit:  "0986095-unsupported",
			built:   "2024-03-01T11:00:00.000000005Z",
			static:  "true",
			want:    "0.1.0 (0986095-unsupported, " + Platform() + ", static) built 2024-03-01T11:00:00Z",
		},
		{
			name:    "malformed build time",
			version: "0.1.0",
			commit:  "0986095",
			built:   "yesterday",
			want:    "0.1.0 (0986095, " + Platform() + ")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVariables(t, tt.version, tt.commit, tt.built, tt.static)
			if got := VersionString(); got != tt.want {
				t.Fatalf("VersionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsStatic(t *testing.T) {
	for value, want := range map[string]bool{"": false, "true": true, "1": true, "false": false, "yes": false} {
		withVariables(t, "", "", "", value)
		if got := IsStatic(); got != want {
			t.Errorf("IsStatic() with %q = %v, want %v", value, got, want)
		}
	}
}
