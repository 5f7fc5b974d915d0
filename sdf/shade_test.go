package sdf

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
)

func TestCameraDirectionCentre(t *testing.T) {
	dir := DefaultCamera.Direction(0.5, 0.5)
	want := DefaultCamera.Origin.Normalize().Neg()
	if dir.Sub(want).Length() > 1e-5 {
		t.Errorf("centre direction = %v, want %v", dir, want)
	}
}

func TestCameraDirectionOrientation(t *testing.T) {
	top := DefaultCamera.Direction(0.5, 0)
	bottom := DefaultCamera.Direction(0.5, 1)
	if top.Y <= bottom.Y {
		t.Errorf("top of the image should look higher: top=%v bottom=%v", top, bottom)
	}
	for _, d := range []Vec3{top, bottom, DefaultCamera.Direction(0, 0)} {
		if math32.Abs(d.Length()-1) > 1e-5 {
			t.Errorf("direction %v not normalized", d)
		}
	}
}

func TestShadeMissIsBackground(t *testing.T) {
	// The only sphere sits behind the camera.
	cam := Camera{Origin: V3(0, 0, -5), Up: V3(0, 1, 0)}
	behind := func(_ float32, p Vec3) float32 { return Sphere(p.Sub(V3(0, 0, -10)), 1) }
	got := Shade(behind, 0, 50, 50, 100, 100, cam, DefaultSun)
	if got != Background {
		t.Errorf("Shade() = %+v, want background %+v", got, Background)
	}
}

func TestShadeHit(t *testing.T) {
	got := Shade(UnitSphere, 0, 50, 50, 100, 100, DefaultCamera, DefaultSun)
	if got == Background {
		t.Fatal("centre pixel should hit the sphere")
	}
	if got.A != 1 {
		t.Errorf("alpha = %v, want 1", got.A)
	}
	if got.B <= got.R {
		t.Errorf("lit surface should be blue-dominant, got %+v", got)
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		in   Color
		want color.RGBA
	}{
		{Background, color.RGBA{0, 0, 0, 255}},
		{Color{1, 0.5, 0, 1}, color.RGBA{255, 128, 0, 255}},
		{Color{2, -1, 1.5, 0}, color.RGBA{255, 0, 255, 0}},
	}
	for _, tt := range tests {
		if got := tt.in.RGBA(); got != tt.want {
			t.Errorf("%+v.RGBA() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderUnitSphere(t *testing.T) {
	img, err := Render(context.Background(), UnitSphere, DefaultRenderOptions(100, 100))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	bg := Background.RGBA()

	if c := img.RGBAAt(50, 50); c == bg {
		t.Errorf("centre pixel = %v, want a lit surface", c)
	}
	for _, pt := range [][2]int{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		if c := img.RGBAAt(pt[0], pt[1]); c != bg {
			t.Errorf("corner %v = %v, want background %v", pt, c, bg)
		}
	}
}

func TestRenderMatchesShade(t *testing.T) {
	opts := DefaultRenderOptions(16, 12)
	opts.Time = 0.75
	opts.Workers = 3
	img, err := Render(context.Background(), PulseScene, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for y := range 12 {
		for x := range 16 {
			want := Shade(PulseScene, 0.75, float32(x)+0.5, float32(y)+0.5, 16, 12, DefaultCamera, DefaultSun).RGBA()
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, OceanScene, DefaultRenderOptions(64, 64)); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() = %v, want context.Canceled", err)
	}
}

func TestRenderInvalidSize(t *testing.T) {
	if _, err := Render(context.Background(), UnitSphere, DefaultRenderOptions(0, 10)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Render() = %v, want ErrInvalidSize", err)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range SceneNames() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) = %v", name, err)
		}
	}
	if _, err := Lookup("teapot"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Lookup(teapot) = %v, want ErrUnknownScene", err)
	}
	if _, err := Lookup(DefaultScene); err != nil {
		t.Errorf("default scene missing: %v", err)
	}
}

func TestOceanSceneBound(t *testing.T) {
	if d := OceanScene(0, V3(20, 0, 0)); d != math32.MaxFloat32 {
		t.Errorf("OceanScene outside bound = %v, want MaxFloat32", d)
	}
}
