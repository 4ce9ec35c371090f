package main

// Environment variables that override the built-in flag defaults.
const (
	envConfigPath = "GATEWAY_CONFIG_PATH"
	envLogLevel   = "GATEWAY_LOG_LEVEL"
	envLogFormat  = "GATEWAY_LOG_FORMAT"
)

// flagDefaults returns the defaults shown by -help. Each one comes from
// its environment variable when lookup finds it set to a non-empty value.
func flagDefaults(lookup func(string) (string, bool)) cliFlags {
	defaults := cliFlags{
		configPath: "configs/gateway.yaml",
		logLevel:   "info",
		logFormat:  "json",
	}

	overrides := []struct {
		env   string
		field *string
	}{
		{envConfigPath, &defaults.configPath},
		{envLogLevel, &defaults.logLevel},
		{envLogFormat, &defaults.logFormat},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.env); ok && v != "" {
			*o.field = v
		}
	}

	return defaults
}
