//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/pixpack/api"
	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/raster"
)

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// filesFromJS reads an object mapping names -> Uint8Array.
func filesFromJS(obj js.Value) map[string][]byte {
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", obj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(obj.Get(k))
	}
	return files
}

func filesToJS(files map[string][]byte) js.Value {
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func optString(args []js.Value, i int) string {
	if len(args) > i && args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return ""
}

// pixpackPack(files, archiveFormat?) -> Uint8Array
func pixpackPack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	f, err := archive.ParseFormat(optString(args, 1))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := api.PackFiles(filesFromJS(args[0]), f)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// pixpackUnpack(blob) -> {name: Uint8Array}
func pixpackUnpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing archive bytes")
	}
	files, err := api.UnpackFiles(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return filesToJS(files)
}

// pixpackEncode(payload, images, imageFormat?) -> {name: Uint8Array}
func pixpackEncode(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing payload or images")
	}
	f, err := raster.ParseFormat(optString(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := api.EncodeImages(bytesFromJS(args[0]), filesFromJS(args[1]), f)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return filesToJS(out)
}

// pixpackDecode(images) -> Uint8Array
func pixpackDecode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing images object")
	}
	out, err := api.DecodeImages(filesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// pixpackCapacity(payloadLength, images) -> {fits, shortfall, chunks, totalCapacity}
func pixpackCapacity(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing payload length or images")
	}
	rep, err := api.CapacityReport(args[0].Int(), filesFromJS(args[1]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("fits", rep.Fits())
	result.Set("shortfall", rep.Shortfall)
	result.Set("chunks", rep.Chunks)
	result.Set("totalCapacity", rep.TotalCapacity)
	return result
}

func main() {
	js.Global().Set("pixpackPack", js.FuncOf(pixpackPack))
	js.Global().Set("pixpackUnpack", js.FuncOf(pixpackUnpack))
	js.Global().Set("pixpackEncode", js.FuncOf(pixpackEncode))
	js.Global().Set("pixpackDecode", js.FuncOf(pixpackDecode))
	js.Global().Set("pixpackCapacity", js.FuncOf(pixpackCapacity))
	select {}
}
