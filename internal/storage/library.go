package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

// Library holds every dialogue tree found under the data directory. Content
// is loaded and validated once at process start and is immutable afterwards;
// malformed content fails the load rather than surfacing mid-conversation.
type Library struct {
	trees  map[string]*dialogue.Tree
	logger *slog.Logger
}

// LoadLibrary walks dataDir/trees and parses every .json and .yaml tree
// file. Any file that fails to parse or validate aborts the load.
func LoadLibrary(dataDir string, logger *slog.Logger) (*Library, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	treesDir := filepath.Join(dataDir, "trees")

	lib := &Library{
		trees:  make(map[string]*dialogue.Tree),
		logger: logger,
	}

	err := filepath.WalkDir(treesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}

		tree, err := loadTreeFile(path)
		if err != nil {
			return err
		}

		if _, exists := lib.trees[tree.ID]; exists {
			return fmt.Errorf("duplicate tree id %q in %s", tree.ID, path)
		}
		lib.trees[tree.ID] = tree
		logger.Debug("Loaded dialogue tree", "tree_id", tree.ID, "path", path, "nodes", len(tree.Nodes))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load dialogue content: %w", err)
	}

	logger.Info("Dialogue content loaded", "trees", len(lib.trees), "dir", treesDir)
	return lib, nil
}

func loadTreeFile(path string) (*dialogue.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file %s: %w", path, err)
	}

	var tree dialogue.Tree
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tree file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tree file %s: %w", path, err)
		}
	}

	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tree file %s: %w", path, err)
	}
	return &tree, nil
}

// GetTree returns the tree with the given id, or nil.
func (l *Library) GetTree(id string) *dialogue.Tree {
	return l.trees[id]
}

// ListTrees returns the loaded tree ids in stable order.
func (l *Library) ListTrees() []string {
	ids := make([]string, 0, len(l.trees))
	for id := range l.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of loaded trees.
func (l *Library) Count() int {
	return len(l.trees)
}
