package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <tree.json|tree.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &TreeValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Dialogue tree file is valid!")
}

type TreeValidator struct {
	errors   []string
	warnings []string
}

func (v *TreeValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("tree file must have a .json or .yaml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	var tree dialogue.Tree
	if ext == ".json" {
		decoder := json.NewDecoder(strings.NewReader(string(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&tree); err != nil {
			return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("file %s failed YAML unmarshaling: %w", filename, err)
		}
	}

	if err := tree.Validate(); err != nil {
		return fmt.Errorf("structural validation of %s failed: %w", filename, err)
	}

	v.validateTree(&tree)

	for _, w := range v.warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *TreeValidator) validateTree(t *dialogue.Tree) {
	v.validateIDFormat("tree ID", t.ID)

	hasFallback := false
	for i := range t.Nodes {
		n := &t.Nodes[i]
		v.validateIDFormat("node ID", n.ID)
		if n.ID == dialogue.FallbackNodeID {
			hasFallback = true
		}

		for j := range n.Responses {
			r := &n.Responses[j]
			v.validateIDFormat("response ID", r.ID)

			if r.AcceptsTranscript() && len(r.ExpectedSpeech) == 0 {
				v.addWarning(fmt.Sprintf("node %q response %q requires %s input but has no expectedSpeech; it can never match",
					n.ID, r.ID, r.RequiresType))
			}
			for _, phrase := range r.ExpectedSpeech {
				if strings.TrimSpace(phrase) == "" {
					v.addError(fmt.Sprintf("node %q response %q has an empty accepted phrase", n.ID, r.ID))
				}
			}
		}
	}

	if !hasFallback {
		v.addWarning(fmt.Sprintf("tree %q defines no %q node; repeated failed attempts will stay on the current node",
			t.ID, dialogue.FallbackNodeID))
	}
}

func (v *TreeValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("  - %s '%s' should be lowercase kebab-case", fieldName, id))
	}
}

func (v *TreeValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *TreeValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
