package config

import "testing"

func TestSetConfigAndGetConfigRoundTrip(t *testing.T) {
	cfg := validConfig()
	SetConfig(cfg)
	t.Cleanup(func() { SetConfig(nil) })

	if got := GetConfig(); got != cfg {
		t.Errorf("expected GetConfig to return the set config")
	}
}

func TestMustGetConfigPanicsWhenUnset(t *testing.T) {
	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("expected MustGetConfig to panic when unset")
		}
	}()
	MustGetConfig()
}
