package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/costgraph/pkg/observability"
)

func TestExecuteUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	if err := Execute(context.Background(), []string{"nope"}, &stderr); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestExecuteVerboseRegistersHooks(t *testing.T) {
	testCLI(t, nil)
	defer observability.Reset()

	var stderr bytes.Buffer
	if err := Execute(context.Background(), []string{"pipelines", "-v"}, &stderr); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := observability.Flow().(*logHooks); !ok {
		t.Errorf("flow hooks = %T, want *logHooks", observability.Flow())
	}
}

func TestVersionTemplate(t *testing.T) {
	c, _ := testCLI(t, nil)

	out, err := run(t, c, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, appName+" ") || !strings.Contains(out, "built") {
		t.Errorf("version output = %q", out)
	}
}
