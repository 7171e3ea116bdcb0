package config

func defaultConfig() *Config {
	return &Config{
		DataDirectory:  "~/.local/share/loqui",
		ProviderID:     "ollama",
		ProviderHost:   "http://localhost:11434",
		DefaultModel:   "llama3.1:latest",
		StorageBackend: "file",
	}
}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/loqui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			ID:           "ollama",
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		StorageBackend: "file",
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Loqui System Configuration
# Location: ~/.config/loqui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where chats, lists and user config are stored
data_directory = "~/.local/share/loqui"
`
}

func GenerateUserConfigTemplate() string {
	return `# Loqui User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# Which backend to talk to: ollama, openai, anthropic, openrouter
id = "ollama"

# Server URL (ollama and openrouter only; leave empty for hosted APIs)
host = "http://localhost:11434"

# Default model to use when starting a new chat
default_model = "llama3.1:latest"

# Environment variable holding the API key (optional; conventional
# names like OPENAI_API_KEY are tried when this is empty)
api_key_env = ""

# Where chats and lists are persisted: file or sqlite
storage_backend = "file"

# Replaces the built-in assistant preface when set
prompt_preface = ""

# Shell command used to speak assistant replies aloud, e.g. "espeak-ng"
# The utterance is passed as the final argument.
tts_command = ""
`
}
