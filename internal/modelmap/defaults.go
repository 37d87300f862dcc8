package modelmap

// Sector names. Every memory is filed into exactly one of these.
const (
	SectorEpisodic   = "episodic"
	SectorSemantic   = "semantic"
	SectorProcedural = "procedural"
	SectorEmotional  = "emotional"
	SectorReflective = "reflective"
)

// Provider names understood by the defaults table.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderAWS    = "aws"
	ProviderLocal  = "local"
)

// Default model names. The reflective sector carries more nuance per
// memory, so it gets the large OpenAI model and the stronger local model;
// the other four sectors share one row.
const (
	defaultOllamaModel  = "nomic-embed-text"
	defaultOpenAIModel  = "text-embedding-3-small"
	largeOpenAIModel    = "text-embedding-3-large"
	defaultGeminiModel  = "text-embedding-004"
	defaultBedrockModel = "amazon.titan-embed-text-v2:0"
	defaultLocalModel   = "all-MiniLM-L6-v2"
	alternateLocalModel = "all-mpnet-base-v2"
)

// DefaultModels returns the built-in sector/provider/model table. It builds
// a fresh map on every call so the compiled-in last-resort table can never
// be mutated through a cached reference.
func DefaultModels() Mapping {
	base := func() map[string]string {
		return map[string]string{
			ProviderOllama: defaultOllamaModel,
			ProviderOpenAI: defaultOpenAIModel,
			ProviderGemini: defaultGeminiModel,
			ProviderAWS:    defaultBedrockModel,
			ProviderLocal:  defaultLocalModel,
		}
	}

	m := Mapping{
		SectorEpisodic:   base(),
		SectorSemantic:   base(),
		SectorProcedural: base(),
		SectorEmotional:  base(),
		SectorReflective: base(),
	}

	m[SectorReflective][ProviderOpenAI] = largeOpenAIModel
	m[SectorReflective][ProviderLocal] = alternateLocalModel

	return m
}
