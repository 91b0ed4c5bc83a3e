package optimizer

import (
	"reflect"
	"testing"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

func device(mem float64, cores, accel int) model.DeviceInfo {
	return model.DeviceInfo{MemoryGB: mem, CPUCores: cores, AcceleratorTier: accel}
}

func TestClassifyTier(t *testing.T) {
	cases := []struct {
		name   string
		device model.DeviceInfo
		want   string
	}{
		{"low memory", device(2, 4, 0), model.TierLowEnd},
		{"low cores", device(8, 2, 0), model.TierLowEnd},
		{"weakest", device(1, 1, 0), model.TierLowEnd},
		{"mid default", device(4, 4, 0), model.TierMidRange},
		{"strong but no accelerator", device(16, 16, 0), model.TierMidRange},
		{"strong with basic accelerator", device(16, 16, 1), model.TierMidRange},
		{"high end", device(8, 8, 2), model.TierHighEnd},
		{"unset fields default to mid", model.DeviceInfo{}, model.TierMidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTier(tc.device); got != tc.want {
				t.Errorf("ClassifyTier(%+v) = %q, want %q", tc.device, got, tc.want)
			}
		})
	}
}

func TestOptimizeLowEndBalanced(t *testing.T) {
	// Device {memory:1, cores:1} + balanced → low_end tier, low-end
	// resolution ceiling, accelerator disabled.
	profile, _, _, err := Optimize(device(1, 1, 0), QualityBalanced)
	if err != nil {
		t.Fatal(err)
	}
	if profile.QualityTier != model.TierLowEnd {
		t.Errorf("tier = %q, want low_end", profile.QualityTier)
	}
	if profile.TargetResolution.Width != 416 || profile.TargetResolution.Height != 416 {
		t.Errorf("resolution = %+v, want 416x416", profile.TargetResolution)
	}
	if profile.UseAccelerator {
		t.Error("accelerator should be disabled on low-end device")
	}
	if profile.Precision != model.PrecisionInt8 {
		t.Errorf("precision = %q, want int8", profile.Precision)
	}
}

func TestOptimizeQualityFast(t *testing.T) {
	for _, d := range []model.DeviceInfo{device(1, 1, 0), device(4, 4, 0), device(16, 16, 2)} {
		base, _, _, err := Optimize(d, QualityBalanced)
		if err != nil {
			t.Fatal(err)
		}
		fast, _, _, err := Optimize(d, QualityFast)
		if err != nil {
			t.Fatal(err)
		}
		if fast.TargetResolution.Width > 320 {
			t.Errorf("fast resolution %d exceeds ceiling", fast.TargetResolution.Width)
		}
		// fast only shrinks, never grows.
		if fast.TargetResolution.Width > base.TargetResolution.Width {
			t.Errorf("fast grew resolution: %d > %d", fast.TargetResolution.Width, base.TargetResolution.Width)
		}
		if fast.Enhance || fast.Denoise {
			t.Error("fast must disable enhancement and denoising")
		}
	}
}

func TestOptimizeQualityAccurate(t *testing.T) {
	for _, d := range []model.DeviceInfo{device(1, 1, 0), device(4, 4, 0), device(16, 16, 2)} {
		p, _, _, err := Optimize(d, QualityAccurate)
		if err != nil {
			t.Fatal(err)
		}
		if p.TargetResolution.Width < 640 {
			t.Errorf("accurate resolution %d below floor", p.TargetResolution.Width)
		}
		if !p.Enhance || !p.Denoise {
			t.Error("accurate must force enhancement and denoising")
		}
	}
}

func TestOptimizeUnknownQuality(t *testing.T) {
	if _, _, _, err := Optimize(device(4, 4, 0), "turbo"); err == nil {
		t.Fatal("expected error for unknown quality preference")
	}
}

func TestOptimizeEmptyQualityDefaultsToBalanced(t *testing.T) {
	a, pa, _, err := Optimize(device(4, 4, 0), "")
	if err != nil {
		t.Fatal(err)
	}
	b, pb, _, err := Optimize(device(4, 4, 0), QualityBalanced)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) || pa != pb {
		t.Error("empty quality should behave like balanced")
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	d := device(8, 8, 2)
	p1, pred1, recs1, err := Optimize(d, QualityAccurate)
	if err != nil {
		t.Fatal(err)
	}
	p2, pred2, recs2, err := Optimize(d, QualityAccurate)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p1, p2) || pred1 != pred2 || !reflect.DeepEqual(recs1, recs2) {
		t.Error("Optimize is not idempotent for identical inputs")
	}
}

func TestOptimizeMonotonicAcrossDevices(t *testing.T) {
	// Each pair differs only by more memory/cores. The stronger device must
	// get at least the weaker device's resolution and no higher predicted
	// latency.
	pairs := []struct {
		weaker, stronger model.DeviceInfo
	}{
		{device(1, 1, 0), device(4, 4, 0)},
		{device(2, 4, 0), device(4, 4, 0)},
		{device(2, 8, 0), device(4, 8, 0)},
		{device(4, 4, 2), device(8, 8, 2)},
		{device(4, 8, 2), device(8, 8, 2)},
	}
	for _, quality := range []string{QualityFast, QualityBalanced, QualityAccurate} {
		for _, pair := range pairs {
			wp, wpred, _, err := Optimize(pair.weaker, quality)
			if err != nil {
				t.Fatal(err)
			}
			sp, spred, _, err := Optimize(pair.stronger, quality)
			if err != nil {
				t.Fatal(err)
			}
			if sp.TargetResolution.Width < wp.TargetResolution.Width {
				t.Errorf("%s: stronger device %+v got smaller resolution (%d < %d)",
					quality, pair.stronger, sp.TargetResolution.Width, wp.TargetResolution.Width)
			}
			if spred.InferenceMillis > wpred.InferenceMillis {
				t.Errorf("%s: stronger device %+v predicted slower (%.1fms > %.1fms)",
					quality, pair.stronger, spred.InferenceMillis, wpred.InferenceMillis)
			}
		}
	}
}

func TestPredictionMonotonicInResolution(t *testing.T) {
	// Same device, increasing resolution via quality preference: latency,
	// memory, and accuracy all rise with resolution.
	d := device(4, 4, 0)
	fast, pf, _, _ := Optimize(d, QualityFast)
	bal, pb, _, _ := Optimize(d, QualityBalanced)
	if fast.TargetResolution.Pixels() >= bal.TargetResolution.Pixels() {
		t.Fatal("expected fast < balanced resolution for this device")
	}
	if pf.InferenceMillis >= pb.InferenceMillis {
		t.Errorf("latency not monotonic: %.1f >= %.1f", pf.InferenceMillis, pb.InferenceMillis)
	}
	if pf.MemoryMB >= pb.MemoryMB {
		t.Errorf("memory not monotonic: %.1f >= %.1f", pf.MemoryMB, pb.MemoryMB)
	}
	if pf.Accuracy >= pb.Accuracy {
		t.Errorf("accuracy not monotonic: %.3f >= %.3f", pf.Accuracy, pb.Accuracy)
	}
}

func TestPredictionBounds(t *testing.T) {
	for _, d := range []model.DeviceInfo{device(1, 1, 0), device(4, 4, 1), device(32, 32, 3)} {
		for _, q := range []string{QualityFast, QualityBalanced, QualityAccurate} {
			_, pred, _, err := Optimize(d, q)
			if err != nil {
				t.Fatal(err)
			}
			if pred.Accuracy <= 0 || pred.Accuracy >= 1.0 {
				t.Errorf("accuracy %v out of (0,1) for %+v %s", pred.Accuracy, d, q)
			}
			if pred.InferenceMillis <= 0 || pred.MemoryMB <= 0 {
				t.Errorf("non-positive prediction for %+v %s: %+v", d, q, pred)
			}
		}
	}
}

func TestRecommendations(t *testing.T) {
	_, _, recs, err := Optimize(device(1, 1, 0), QualityBalanced)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations for a weak device")
	}

	// Recommendations are advisory: a mobile flag changes notes, never the profile.
	mobile := model.DeviceInfo{MemoryGB: 8, CPUCores: 8, AcceleratorTier: 2, Platform: "mobile"}
	desktop := model.DeviceInfo{MemoryGB: 8, CPUCores: 8, AcceleratorTier: 2}
	mp, _, mrecs, _ := Optimize(mobile, QualityBalanced)
	dp, _, _, _ := Optimize(desktop, QualityBalanced)
	if !reflect.DeepEqual(mp, dp) {
		t.Error("platform must not affect the profile")
	}
	found := false
	for _, r := range mrecs {
		if r == "Hardware acceleration increases battery drain on mobile devices" {
			found = true
		}
	}
	if !found {
		t.Error("expected battery-drain note for mobile device with accelerator")
	}
}
