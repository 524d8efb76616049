package tmptoml_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-tmptoml"
	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/orchestrator"
	"github.com/goliatone/go-tmptoml/pkg/testsupport"
)

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	configPath := testsupport.WriteFile(t, dir, "hosts.toml", "[web]\nname = \"edge\"\n\n[web.prod]\nreplicas = 3\n")
	templatePath := testsupport.WriteFile(t, dir, "motd.tpl", "{{ name }} x{{ replicas }}")

	out, err := tmptoml.RenderFile(testsupport.Context(), configPath, templatePath, "web", "prod")
	if err != nil {
		t.Fatalf("render file: %v", err)
	}
	if out != "edge x3" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderFile_Options(t *testing.T) {
	dir := t.TempDir()
	configPath := testsupport.WriteFile(t, dir, "hosts.conf", "web:\n  prod:\n    replicas: 2\n")
	templatePath := testsupport.WriteFile(t, dir, "motd.tpl", "{{ replicas }}{{ missing }}")

	out, err := tmptoml.RenderFile(testsupport.Context(), configPath, templatePath, "web", "prod",
		tmptoml.WithParserOptions(pkgconfig.WithFormat(pkgconfig.FormatYAML)),
		tmptoml.WithStrict(false),
	)
	if err != nil {
		t.Fatalf("render file: %v", err)
	}
	if out != "2" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderFile_Error(t *testing.T) {
	_, err := tmptoml.RenderFile(testsupport.Context(), "missing.toml", "missing.tpl", "a", "b")

	var tagged *tmptoml.Error
	if !errors.As(err, &tagged) || tagged.Kind != orchestrator.KindFile {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestNewLoaderAndParser(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteFile(t, dir, "a.json", `{"g": {"k": "v", "s": {}}}`)

	doc, err := tmptoml.NewLoader().Load(testsupport.Context(), pkgconfig.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tree, err := tmptoml.NewParser().Parse(testsupport.Context(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var variables tmptoml.Variables
	gen := tmptoml.NewOrchestrator()
	variables, err = gen.Variables(testsupport.Context(), orchestrator.Request{Document: &doc, GroupID: "g", SecondaryGroupID: "s"})
	if err != nil {
		t.Fatalf("variables: %v", err)
	}
	if len(tree) != 1 || variables["k"] != "v" {
		t.Fatalf("unexpected results: tree=%v variables=%v", tree, variables)
	}
}
