package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"copysmith/pkg/kvstore"
	"copysmith/pkg/logx"
)

// PrefStore persists workspace memory documents in the key-value store.
type PrefStore struct {
	store  kvstore.Store
	logger *logx.Logger
	now    func() time.Time // injectable clock for tests
}

// NewPrefStore creates a preference store over the given KV backend.
func NewPrefStore(store kvstore.Store) *PrefStore {
	return &PrefStore{
		store:  store,
		logger: logx.NewLogger("memory"),
		now:    time.Now,
	}
}

func memoryKey(workspaceID string) string {
	return "memory:" + workspaceID
}

// Load returns the workspace memory, or a well-formed default when nothing is
// stored. Load never fails on a missing or unreadable document; the worst
// case is starting from empty.
func (p *PrefStore) Load(ctx context.Context, workspaceID string) *WorkspaceMemory {
	data, found, err := p.store.Get(ctx, memoryKey(workspaceID))
	if err != nil {
		p.logger.Warn("Failed to load memory for workspace %s: %v", workspaceID, err)
		return defaultMemory()
	}
	if !found {
		return defaultMemory()
	}

	var mem WorkspaceMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		p.logger.Warn("Corrupt memory document for workspace %s, starting fresh: %v", workspaceID, err)
		return defaultMemory()
	}
	if mem.StylePreferences.Settings == nil {
		mem.StylePreferences.Settings = make(map[string]string)
	}
	if mem.Version == 0 {
		mem.Version = SchemaVersion
	}
	return &mem
}

// Update applies a signal-extractor result to the workspace memory and
// persists the merged document. Writes are read-merge-write with no
// concurrency control; concurrent feedback on the same workspace is
// last-write-wins.
func (p *PrefStore) Update(ctx context.Context, workspaceID string, update *Update) error {
	mem := p.Load(ctx, workspaceID)

	switch update.Type {
	case UpdateAntiPattern:
		mem.AntiPatterns = appendUnique(mem.AntiPatterns, update.Value)
		if update.Avoid != "" {
			mem.AntiPatterns = appendUnique(mem.AntiPatterns, update.Avoid)
		}
	case UpdatePreference:
		recognized := classifyPreference(update.Value)
		if len(recognized) > 0 {
			for key, value := range recognized {
				mem.StylePreferences.Settings[key] = value
			}
		} else {
			mem.StylePreferences.VoiceNotes = appendUnique(mem.StylePreferences.VoiceNotes, update.Value)
		}
		if update.Avoid != "" {
			mem.AntiPatterns = appendUnique(mem.AntiPatterns, update.Avoid)
		}
	default:
		return fmt.Errorf("unknown memory update type %q", update.Type)
	}

	mem.LastUpdated = p.now().UTC()

	data, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	if err := p.store.Put(ctx, memoryKey(workspaceID), data); err != nil {
		return fmt.Errorf("failed to persist memory: %w", err)
	}

	p.logger.Info("Updated memory for workspace %s (%s)", workspaceID, update.Type)
	return nil
}

// Clear deletes the stored document entirely. A subsequent Load returns the
// empty default.
func (p *PrefStore) Clear(ctx context.Context, workspaceID string) error {
	if err := p.store.Delete(ctx, memoryKey(workspaceID)); err != nil {
		return fmt.Errorf("failed to clear memory: %w", err)
	}
	p.logger.Info("Cleared memory for workspace %s", workspaceID)
	return nil
}

// classifyPreference looks for special keywords in a preference value and
// maps them onto well-known style settings. An empty result means the value
// belongs in voice notes instead.
func classifyPreference(value string) map[string]string {
	lower := strings.ToLower(value)
	recognized := make(map[string]string)

	switch {
	case strings.Contains(lower, "casual") || strings.Contains(lower, "informal"):
		recognized[PrefTone] = "casual"
	case strings.Contains(lower, "formal") || strings.Contains(lower, "professional"):
		recognized[PrefTone] = "formal"
	case strings.Contains(lower, "playful") || strings.Contains(lower, "fun"):
		recognized[PrefTone] = "playful"
	}

	switch {
	case strings.Contains(lower, "no emoji"):
		recognized[PrefEmojiUsage] = "none"
	case strings.Contains(lower, "emoji"):
		recognized[PrefEmojiUsage] = "moderate"
	}

	if len(recognized) == 0 {
		return nil
	}
	return recognized
}

// appendUnique appends value unless it is already present, preserving
// insertion order.
func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
