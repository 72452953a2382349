package workspace_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/workspace"
)

func ExampleWorkspace_Apply() {
	ctx := context.Background()
	ws := workspace.New("demo", layout.Horizontal, workspace.Options{
		Engine: layout.NewEngine(layout.SequentialIDs("w")),
	})

	ws.Apply(ctx, workspace.InsertRoot{ID: "editor"})
	ws.Apply(ctx, workspace.InsertRoot{ID: "shell"})
	res, _ := ws.Apply(ctx, workspace.Drop{Dragged: "shell", Target: "editor", Position: layout.Bottom})
	fmt.Print(res.Snapshot.Tree)

	// The pane closed a moment ago is silently ignored.
	res, _ = ws.Apply(ctx, workspace.Remove{ID: "logs"})
	fmt.Println("ignored:", res.Ignored)
	// Output:
	// root (horizontal)
	//   w1 (vertical)
	//     editor
	//     shell
	// ignored: true
}
