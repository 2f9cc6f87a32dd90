package coordinator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeTypeFromPurpose(t *testing.T) {
	require.Equal(t, "CharacterBody2D", NodeTypeFromPurpose("Player scene. Root node is CharacterBody2D."))
	require.Equal(t, "Area2D", NodeTypeFromPurpose("Pickup zone, extends Area2D"))
	require.Equal(t, "Node", NodeTypeFromPurpose("Main game scene"))
}

func TestSceneDocument_Shape(t *testing.T) {
	doc := SceneDocument("player_ship.tscn", "Ship scene. Root node is CharacterBody2D.")

	require.True(t, strings.HasPrefix(doc, "[gd_scene load_steps=2 format=3 uid=\"uid://b"))
	require.Contains(t, doc, `path="res://player_ship.gd"`)
	require.Contains(t, doc, `[node name="PlayerShip" type="CharacterBody2D"]`)
	require.Contains(t, doc, "script = ExtResource(")
}

func TestSceneDocument_Deterministic(t *testing.T) {
	a := SceneDocument("hud.tscn", "HUD overlay")
	b := SceneDocument("hud.tscn", "HUD overlay")
	require.Equal(t, a, b)

	other := SceneDocument("menu.tscn", "HUD overlay")
	require.NotEqual(t, a, other, "uid must depend on the filename")
}

func TestSceneDocument_NestedPath(t *testing.T) {
	doc := SceneDocument("scenes/main_menu.tscn", "Menu")
	require.Contains(t, doc, `path="res://scenes/main_menu.gd"`)
	require.Contains(t, doc, `[node name="MainMenu" type="Node"]`)
}
