package coordinator

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"genforge/internal/plan"
)

// nodeTypeRE pulls an explicit node type out of an artifact purpose,
// e.g. "Root node is CharacterBody2D" or "Extends Area2D".
var nodeTypeRE = regexp.MustCompile(`(?i)(?:Root node is|Extends)\s+([A-Za-z0-9_]+)`)

// NodeTypeFromPurpose derives the scene's root node type from the purpose
// text, defaulting to a plain Node.
func NodeTypeFromPurpose(purpose string) string {
	if m := nodeTypeRE.FindStringSubmatch(purpose); m != nil {
		return m[1]
	}
	return "Node"
}

// SceneDocument renders a minimal Godot 4 scene file deterministically.
// No model call is involved: scene files follow a strict text format where
// generation noise would corrupt the resource, so the document is built
// from the filename and purpose alone. The scene wires in its companion
// script (same path, .gd extension).
func SceneDocument(filename, purpose string) string {
	stem := plan.Stem(filename)
	nodeName := pascalCase(stem)
	nodeType := NodeTypeFromPurpose(purpose)
	scriptPath := strings.TrimSuffix(filename, ".tscn") + ".gd"

	h := fnv.New64a()
	h.Write([]byte(filename))
	sum := h.Sum64()
	uid := fmt.Sprintf("uid://b%010d", sum%10_000_000_000)
	resourceID := fmt.Sprintf("1_%05x", sum%0xfffff)

	var b strings.Builder
	fmt.Fprintf(&b, "[gd_scene load_steps=2 format=3 uid=%q]\n\n", uid)
	fmt.Fprintf(&b, "[ext_resource type=\"Script\" path=\"res://%s\" id=%q]\n\n", scriptPath, resourceID)
	fmt.Fprintf(&b, "[node name=%q type=%q]\n", nodeName, nodeType)
	fmt.Fprintf(&b, "script = ExtResource(%q)\n", resourceID)
	return b.String()
}

// pascalCase converts a snake_case or kebab-case stem into a node name
// ("player_ship" -> "PlayerShip").
func pascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	if len(parts) == 0 {
		return "Scene"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
