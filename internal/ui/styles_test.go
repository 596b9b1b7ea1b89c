package ui

import (
	"strings"
	"testing"
)

func TestRenderSeverity(t *testing.T) {
	noColor = false
	t.Cleanup(func() { noColor = false })

	for _, tc := range []struct {
		sev  string
		code string
	}{
		{"high", "203"},
		{"medium", "179"},
		{"low", "114"},
		{"none", "245"},
	} {
		got := RenderSeverity(tc.sev)
		if !strings.Contains(got, "38;5;"+tc.code+"m") || !strings.Contains(got, tc.sev) {
			t.Errorf("RenderSeverity(%q) = %q, want color %s", tc.sev, got, tc.code)
		}
	}
}

func TestForceNoColor(t *testing.T) {
	t.Cleanup(func() { noColor = false })
	ForceNoColor()
	for _, s := range []string{RenderAccent("x"), RenderStatus("x"), RenderSeverity("x"), RenderError("x")} {
		if s != "x" {
			t.Errorf("got %q, want plain text", s)
		}
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR set but color enabled")
	}
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 but color disabled")
	}
}

func TestColorEnv(t *testing.T) {
	for _, tc := range []struct {
		name        string
		env         map[string]string
		use, decide bool
	}{
		{"Unset", nil, false, false},
		{"NoColor", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, false, true},
		{"Force", map[string]string{"CLICOLOR_FORCE": " 1 "}, true, true},
		{"CliColorOff", map[string]string{"CLICOLOR": "0"}, false, true},
		{"CliColorOn", map[string]string{"CLICOLOR": "1"}, false, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			use, decided := colorEnv(func(k string) string { return tc.env[k] })
			if use != tc.use || decided != tc.decide {
				t.Errorf("colorEnv = %v, %v, want %v, %v", use, decided, tc.use, tc.decide)
			}
		})
	}
}
