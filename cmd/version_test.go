package cmd

import "testing"

func TestVersionString(t *testing.T) {
	old := SoftwareVer
	t.Cleanup(func() { SoftwareVer = old })

	SoftwareVer = ""
	if v := VersionString(); v != "dev" {
		t.Errorf("expected dev for an unversioned build, got %q", v)
	}
	SoftwareVer = "1.4.2"
	if v := VersionString(); v != "1.4.2" {
		t.Errorf("expected injected version, got %q", v)
	}
}
