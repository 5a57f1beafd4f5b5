//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/rackplan/rackplan/backend-go/internal/document"
	"github.com/rackplan/rackplan/backend-go/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	rackplanEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	rackplanEngine.Set("loadLayout", js.FuncOf(loadLayout))
	rackplanEngine.Set("updateLayout", js.FuncOf(updateLayout))
	rackplanEngine.Set("loadSampleLayout", js.FuncOf(loadSampleLayout))
	rackplanEngine.Set("applyOperation", js.FuncOf(applyOperation))
	rackplanEngine.Set("setSelection", js.FuncOf(setSelection))
	rackplanEngine.Set("setView", js.FuncOf(setView))
	rackplanEngine.Set("setCanvas", js.FuncOf(setCanvas))
	rackplanEngine.Set("moveSelection", js.FuncOf(moveSelection))

	// --- Queries (frontend ← backend) ---
	rackplanEngine.Set("render", js.FuncOf(render))
	rackplanEngine.Set("renderScene", js.FuncOf(renderScene))
	rackplanEngine.Set("hitTest", js.FuncOf(hitTest))
	rackplanEngine.Set("plan", js.FuncOf(plan))
	rackplanEngine.Set("getLayout", js.FuncOf(getLayout))
	rackplanEngine.Set("getSelection", js.FuncOf(getSelection))

	js.Global().Set("rackplanEngine", rackplanEngine)

	// Signal that WASM is ready
	js.Global().Set("rackplanWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadLayout(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing layout JSON"})
	}

	if err := eng.LoadLayout(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func updateLayout(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing layout JSON"})
	}

	if err := eng.UpdateLayout(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleLayout(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleLayout()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func applyOperation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing operation JSON"})
	}

	var op document.Operation
	if err := json.Unmarshal([]byte(args[0].String()), &op); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	if err := eng.ApplyOperation(op); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		eng.SetSelection("", "")
		return nil
	}
	eng.SetSelection(args[0].String(), args[1].String())
	return nil
}

func setView(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.SetView(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func setCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetCanvas(args[0].Float(), args[1].Float())
	return nil
}

func moveSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	if err := eng.MoveSelection(args[0].Float(), args[1].Float()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func renderScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderScene())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func plan(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Plan())
}

func getLayout(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetLayout())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}
