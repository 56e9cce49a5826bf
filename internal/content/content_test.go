package content

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "ch01.yaml", `
id: ch01
title: Introduction to ROS 2
version: "2"
body: ch01.md
glossary:
  - term: node
    urdu: نوڈ
`)
	writeFixture(t, dir, "ch01.md", "# ROS 2 Nodes\n\nA node is the basic unit of computation.\n")
	writeFixture(t, dir, "notes.txt", "ignored")

	catalog, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if catalog.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", catalog.Len())
	}

	ch, ok := catalog.Get("ch01")
	if !ok {
		t.Fatal("chapter ch01 not found")
	}
	if ch.Title != "Introduction to ROS 2" || ch.Version != "2" {
		t.Errorf("chapter = %+v", ch)
	}
	if len(ch.Glossary) != 1 || ch.Glossary[0].Term != "node" {
		t.Errorf("glossary = %+v", ch.Glossary)
	}
	if !ch.ContainsSpan("basic unit of computation") {
		t.Error("ContainsSpan should find body text")
	}
	if ch.ContainsSpan("quaternion") {
		t.Error("ContainsSpan matched absent text")
	}
	if ch.ContainsSpan("") {
		t.Error("ContainsSpan should reject empty span")
	}
}

func TestLoadDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.yaml", "id: ch01\ntitle: A\nbody: a.md\n")
	writeFixture(t, dir, "a.md", "a")
	writeFixture(t, dir, "b.yaml", "id: ch01\ntitle: B\nbody: b.md\n")
	writeFixture(t, dir, "b.md", "b")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadMissingBody(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.yaml", "id: ch01\ntitle: A\nbody: missing.md\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected missing body error")
	}
}

func TestLoadDefaultsVersion(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.yaml", "id: ch01\ntitle: A\nbody: a.md\n")
	writeFixture(t, dir, "a.md", "body")

	catalog, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	ch, _ := catalog.Get("ch01")
	if ch.Version != "1" {
		t.Errorf("version = %q, want default 1", ch.Version)
	}
}
