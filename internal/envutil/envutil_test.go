package envutil

import "testing"

func TestHostEnvKey(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		suffix string
		want   string
	}{
		{name: "default prefix", prefix: "", suffix: "DISCOVERY_MODE", want: "FNCTL_DISCOVERY_MODE"},
		{name: "custom prefix", prefix: " ACME ", suffix: "RUNTIME", want: "ACME_RUNTIME"},
		{name: "lowercase prefix with separator", prefix: "acme_", suffix: "CONFIG_STORE", want: "ACME_CONFIG_STORE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ENV_PREFIX", tc.prefix)
			if got := HostEnvKey(tc.suffix); got != tc.want {
				t.Fatalf("HostEnvKey(%q) = %q, want %q", tc.suffix, got, tc.want)
			}
		})
	}
}

func TestGetHostEnvTrimsValue(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	t.Setenv("FNCTL_CONFIG_STORE", "  s3\n")
	if got := GetHostEnv("CONFIG_STORE"); got != "s3" {
		t.Fatalf("GetHostEnv() = %q", got)
	}
	t.Setenv("FNCTL_CONFIG_STORE", "   ")
	if got := GetHostEnv("CONFIG_STORE"); got != "" {
		t.Fatalf("GetHostEnv(blank) = %q", got)
	}
}
