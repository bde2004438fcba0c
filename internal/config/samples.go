package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# ContractLens configuration
version: "1.0"

# Remote analysis service
analyzer:
  endpoint: "http://localhost:8080/analyze"
  field_name: "file"                # multipart field carrying the contract
  default_filename: "contract.cpp"  # name used when typed text is submitted
  timeout: 0s                       # 0 waits indefinitely
  user_agent: "contractlens"

# Local files that may be chosen for upload
upload:
  allowed_extensions: [".cpp", ".hpp", ".h", ".c", ".sol", ".vy", ".rs", ".move", ".txt"]
  max_bytes: 5242880                # 5 MiB

# Imports from GitHub blob URLs
github:
  host: "github.com"
  raw_host: "raw.githubusercontent.com"
  token: ""                         # optional, or set CONTRACTLENS_GITHUB_TOKEN
  timeout: 0s
  max_bytes: 5242880

editor:
  placeholder: "Paste your smart contract here..."

ui:
  theme: "default"                  # default | high-contrast | minimal
  toast_duration: 4s
  log_file: ""                      # logs are discarded in the TUI unless set

output:
  default_format: "text"            # text | json | markdown | csv | sarif
  color_mode: "auto"                # auto | always | never
  verbose: false

analysis:
  concurrency: 4                    # parallel submissions for 'analyze' with many files

watch:
  debounce: 300ms
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
analyzer:
  endpoint: "http://localhost:8080/analyze"
output:
  default_format: "text"
`
}
