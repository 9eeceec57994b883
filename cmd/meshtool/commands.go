package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/assets"
	"github.com/alwayssomewhattired/Vulkan/internal/config"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/camera"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/debug"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/framebuffer"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu/glgpu"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/input"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/loader"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/model"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/renderer"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/window"
	"github.com/alwayssomewhattired/Vulkan/internal/logger"
	"github.com/alwayssomewhattired/Vulkan/pkg/formats"
	"github.com/alwayssomewhattired/Vulkan/pkg/math"
)

const (
	screenshotDir = "screenshots"
	boundsPadding = 0.01
)

// flyKeys maps held keys to camera movement.
var flyKeys = map[sdl.Scancode]camera.Movement{
	sdl.SCANCODE_W: camera.Forward,
	sdl.SCANCODE_S: camera.Backward,
	sdl.SCANCODE_A: camera.Left,
	sdl.SCANCODE_D: camera.Right,
}

func cmdInfo(cfg *config.Config, args []string) error {
	path, err := modelPath(cfg, args)
	if err != nil {
		return err
	}

	mgr, err := newAssets(cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	data, err := mgr.Load(path)
	if err != nil {
		return err
	}

	glb, err := formats.ParseGLB(data)
	if err != nil {
		return err
	}
	node, meshIdx, err := model.SelectMeshNode(glb.Doc)
	if err != nil {
		return err
	}
	mesh, err := model.BuildMesh(glb)
	if err != nil {
		return err
	}

	cam := newCamera(cfg)
	cam.FitToBounds(mesh.Bounds.Min, mesh.Bounds.Max)

	binding := model.VertexBindingDescription()

	fmt.Printf("Model:     %s\n", path)
	fmt.Printf("Container: GLB v%d, %d bytes\n", glb.Header.Version, glb.Header.Length)
	fmt.Printf("Node:      %d (mesh %d)\n", node, meshIdx)
	fmt.Printf("Vertices:  %d (%d bytes, stride %d)\n", len(mesh.Vertices), len(mesh.VertexBytes()), binding.Stride)
	fmt.Printf("Indices:   %d (%d bytes, source %s)\n", mesh.IndexCount(), len(mesh.IndexBytes()), mesh.SourceIndexWidth)
	fmt.Printf("Bounds:    min %v max %v\n", mesh.Bounds.Min, mesh.Bounds.Max)
	fmt.Printf("Camera:    %v looking at %v\n", cam.Position.Array(), mesh.Bounds.Center())
	fmt.Println()
	fmt.Println("Attributes:")
	for _, attr := range model.VertexAttributeDescriptions() {
		fmt.Printf("  location %d  format %-3d offset %d\n", attr.Location, attr.Format, attr.Offset)
	}
	return nil
}

func cmdUpload(cfg *config.Config, args []string) error {
	path, err := modelPath(cfg, args)
	if err != nil {
		return err
	}

	win, err := openWindow(cfg, cfg.Window.Hidden)
	if err != nil {
		return err
	}
	defer win.Close()

	dev := glgpu.New()
	l, err := newLoader(cfg, dev)
	if err != nil {
		return err
	}
	defer l.Assets.Close()

	start := time.Now()
	if err := l.LoadModel(path); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Model:         %s\n", path)
	fmt.Printf("Vertex buffer: %d (%d bytes, %d vertices)\n", l.VertexBuffer.Buffer, l.VertexBuffer.Size, l.VertexCount)
	fmt.Printf("Index buffer:  %d (%d bytes, %d indices, %s)\n", l.IndexBuffer.Buffer, l.IndexBuffer.Size, l.IndexCount, l.IndexType)
	fmt.Printf("Upload time:   %v\n", elapsed)

	l.Release()
	if n := dev.Live(); n != 0 {
		logger.Warn("buffers still live after release", zap.Int("count", n))
	}
	return nil
}

func cmdView(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fit := fs.Bool("fit", true, "Place the camera to frame the model")
	fs.Parse(args)

	path, err := modelPath(cfg, fs.Args())
	if err != nil {
		// Nothing on the command line or in the config: ask.
		if path, err = pickModel(); err != nil {
			return err
		}
	}

	win, err := openWindow(cfg, false)
	if err != nil {
		return err
	}
	defer win.Close()

	width, height := win.GetSize()
	r, err := renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: [3]float32{0.1, 0.1, 0.15},
	})
	if err != nil {
		return err
	}
	defer r.Close()

	dev := glgpu.New()
	l, err := newLoader(cfg, dev)
	if err != nil {
		return err
	}
	defer l.Assets.Close()
	if err := l.LoadModel(path); err != nil {
		return err
	}
	defer l.Release()

	mesh, err := r.NewMesh(l.VertexBuffer.Buffer, l.IndexBuffer.Buffer, l.IndexCount, l.IndexType)
	if err != nil {
		return err
	}
	bounds := r.NewLines(debug.BoundsWireframe(l.Bounds, boundsPadding, debug.BoundsColor))
	defer func() {
		mesh.Delete()
		bounds.Delete()
	}()
	showBounds := false

	cam := newCamera(cfg)
	if *fit {
		cam.FitToBounds(l.Bounds.Min, l.Bounds.Max)
	}

	shots := debug.NewScreenshotCapture(screenshotDir, "meshtool", ".png")

	win.SetTitle(fmt.Sprintf("meshtool - %s", filepath.Base(path)))
	in := input.New()
	last := time.Now()
	captured := false

	for {
		if in.Update() || in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		for _, e := range in.Events() {
			if e.Type == input.EventWindowResize {
				r.Resize(e.Width, e.Height)
			}
		}

		// Look around while the right mouse button is held.
		look := in.IsButtonDown(sdl.BUTTON_RIGHT)
		if look != captured {
			win.CaptureMouse(look)
			captured = look
		}
		if look {
			dx, dy := in.MouseDelta()
			cam.ProcessMouseMovement(float32(dx), float32(-dy), true)
		}

		for key, dir := range flyKeys {
			if in.IsKeyDown(key) {
				cam.ProcessKeyboard(dir, dt)
			}
		}

		if in.IsKeyPressed(sdl.SCANCODE_B) {
			showBounds = !showBounds
		}

		if in.IsKeyPressed(sdl.SCANCODE_R) {
			// The vertex array references the loader's buffers, drop it first.
			mesh.Delete()
			bounds.Delete()
			if err := l.LoadModel(path); err != nil {
				return err
			}
			if mesh, err = r.NewMesh(l.VertexBuffer.Buffer, l.IndexBuffer.Buffer, l.IndexCount, l.IndexType); err != nil {
				return err
			}
			bounds = r.NewLines(debug.BoundsWireframe(l.Bounds, boundsPadding, debug.BoundsColor))
			logger.Info("model reloaded", zap.String("path", path), zap.Uint32("vertices", l.VertexCount))
		}

		u := cam.Uniforms(r.Aspect(), cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far)
		r.Begin()
		r.Draw(mesh, l.ModelMatrix, u)
		if showBounds {
			r.DrawLines(bounds, l.ModelMatrix, u)
		}

		if in.IsKeyPressed(sdl.SCANCODE_F12) {
			pixels, w, h := r.ReadPixels()
			if name, err := shots.CaptureFromPixels(pixels, w, h); err != nil {
				logger.Warn("screenshot failed", zap.Error(err))
			} else {
				logger.Info("screenshot saved", zap.String("path", name))
			}
		}

		win.SwapBuffers()
	}
}

func cmdRender(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "", "Output image (.png or .webp), default <model>.png")
	size := fs.Int("size", 512, "Output width and height in pixels")
	supersample := fs.Int("ss", 2, "Supersampling factor")
	showBounds := fs.Bool("bounds", false, "Draw the bounding box")
	fs.Parse(args)

	path, err := modelPath(cfg, fs.Args())
	if err != nil {
		return err
	}
	if *out == "" {
		*out = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
	}
	if *size < 1 || *supersample < 1 {
		return fmt.Errorf("size and supersampling factor must be positive")
	}
	renderSize := *size * *supersample

	win, err := openWindow(cfg, true)
	if err != nil {
		return err
	}
	defer win.Close()

	fb, err := framebuffer.New(int32(renderSize), int32(renderSize))
	if err != nil {
		return err
	}
	defer fb.Destroy()

	r, err := renderer.New(renderer.Config{
		Width:      renderSize,
		Height:     renderSize,
		ClearColor: [3]float32{0.1, 0.1, 0.15},
	})
	if err != nil {
		return err
	}
	defer r.Close()

	dev := glgpu.New()
	l, err := newLoader(cfg, dev)
	if err != nil {
		return err
	}
	defer l.Assets.Close()
	if err := l.LoadModel(path); err != nil {
		return err
	}
	defer l.Release()

	mesh, err := r.NewMesh(l.VertexBuffer.Buffer, l.IndexBuffer.Buffer, l.IndexCount, l.IndexType)
	if err != nil {
		return err
	}
	defer mesh.Delete()

	cam := newCamera(cfg)
	cam.FitToBounds(l.Bounds.Min, l.Bounds.Max)
	u := cam.Uniforms(1, cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far)

	restore := fb.Bind()
	r.Begin()
	r.Draw(mesh, l.ModelMatrix, u)
	if *showBounds {
		lines := r.NewLines(debug.BoundsWireframe(l.Bounds, boundsPadding, debug.BoundsColor))
		r.DrawLines(lines, l.ModelMatrix, u)
		lines.Delete()
	}
	pixels := fb.ReadPixels()
	restore()

	img, err := debug.ImageFromPixels(pixels, renderSize, renderSize)
	if err != nil {
		return err
	}
	if err := debug.SaveImage(*out, debug.Downsample(img, *size, *size)); err != nil {
		return err
	}

	fmt.Printf("Rendered %s to %s (%dx%d, %dx supersampled)\n", path, *out, *size, *size, *supersample)
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", args[0])
		return nil
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", filepath.Join(config.ConfigDir(), config.FileName))
	return nil
}

// pickModel shows a native file dialog for choosing a model.
func pickModel() (string, error) {
	filename, err := dialog.File().
		Filter("glTF Binary", "glb").
		Filter("All Files", "*").
		Title("Open Model").
		Load()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", errNoModel
		}
		return "", fmt.Errorf("file dialog: %w", err)
	}
	return filename, nil
}

func newAssets(cfg *config.Config) (*assets.Manager, error) {
	mgr := assets.NewManager()
	for _, dir := range cfg.Asset.SearchPaths {
		if err := mgr.AddRoot(dir); err != nil {
			return nil, err
		}
	}
	return mgr, nil
}

func newLoader(cfg *config.Config, dev *glgpu.Device) (*loader.Loader, error) {
	mgr, err := newAssets(cfg)
	if err != nil {
		return nil, err
	}
	l := loader.New(dev, dev)
	l.Assets = mgr
	return l, nil
}

func newCamera(cfg *config.Config) *camera.FlyCamera {
	cam := camera.NewFlyCamera()
	cam.Position = math.V3(cfg.Camera.Position)
	cam.Yaw = cfg.Camera.Yaw
	cam.Pitch = cfg.Camera.Pitch
	cam.MovementSpeed = cfg.Camera.Speed
	cam.MouseSensitivity = cfg.Camera.Sensitivity
	return cam
}

func openWindow(cfg *config.Config, hidden bool) (*window.Window, error) {
	win, err := window.New(window.Config{
		Title:  "meshtool",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Hidden: hidden,
		VSync:  true,
	})
	if err != nil {
		return nil, err
	}

	if err := glgpu.Init(); err != nil {
		win.Close()
		return nil, err
	}
	return win, nil
}
