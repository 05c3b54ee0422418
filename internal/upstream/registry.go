package upstream

import (
	"fmt"

	"github.com/vrsandeep/noor-go/internal/models"
)

var (
	quranRegistry  = make(map[string]models.QuranProvider)
	hadithRegistry = make(map[string]models.HadithProvider)
)

// RegisterQuran adds a Quran provider to the registry. It's called at startup.
func RegisterQuran(p models.QuranProvider) {
	info := p.GetInfo()
	if _, exists := quranRegistry[info.ID]; exists {
		// Panic is appropriate here as it's a developer error during setup.
		panic(fmt.Sprintf("quran provider with ID '%s' is already registered", info.ID))
	}
	quranRegistry[info.ID] = p
}

// RegisterHadith adds a Hadith provider to the registry.
func RegisterHadith(p models.HadithProvider) {
	info := p.GetInfo()
	if _, exists := hadithRegistry[info.ID]; exists {
		panic(fmt.Sprintf("hadith provider with ID '%s' is already registered", info.ID))
	}
	hadithRegistry[info.ID] = p
}

// GetQuran returns a Quran provider by its ID.
func GetQuran(id string) (models.QuranProvider, bool) {
	p, ok := quranRegistry[id]
	return p, ok
}

// GetHadith returns a Hadith provider by its ID.
func GetHadith(id string) (models.HadithProvider, bool) {
	p, ok := hadithRegistry[id]
	return p, ok
}

// GetAll returns a list of information for all registered providers.
func GetAll() []models.ProviderInfo {
	var providers []models.ProviderInfo
	for _, p := range quranRegistry {
		providers = append(providers, p.GetInfo())
	}
	for _, p := range hadithRegistry {
		providers = append(providers, p.GetInfo())
	}
	return providers
}

// UnregisterAll empties the registry. Tests use it between runs.
func UnregisterAll() {
	quranRegistry = make(map[string]models.QuranProvider)
	hadithRegistry = make(map[string]models.HadithProvider)
}
