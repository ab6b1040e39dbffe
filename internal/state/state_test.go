package state

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/metadata"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Lines: []catalog.LineFeature{
			{ID: "Ori", Lines: []catalog.Polyline{
				{{RA: 80, Dec: 10}, {RA: 90, Dec: 6}},
				{{RA: 82, Dec: -8}, {RA: 88, Dec: -4}},
			}},
			{ID: "Lyr", Lines: []catalog.Polyline{
				{{RA: 279, Dec: 38}, {RA: 283, Dec: 33}},
			}},
			{ID: "Peg", Lines: []catalog.Polyline{
				{{RA: 350, Dec: 20}, {RA: 10, Dec: 20}},
			}},
		},
	}
}

func TestNewMachine(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	v := m.View()

	if v.IsSelected() {
		t.Error("new machine should be unselected")
	}
	if v.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", v.Zoom)
	}
	if _, _, ok := v.Center(1000, 500); ok {
		t.Error("unselected view should have no center")
	}
	if v.Transform(1000, 500).Active() {
		t.Error("unselected transform should be identity")
	}
}

func TestMachine_ClickSelects(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())

	req, ok := m.Click("Orion")
	if !ok {
		t.Fatal("Click on Orion should issue a request")
	}
	if req.Name != "Orion" || req.ID == uuid.Nil {
		t.Errorf("request = %+v", req)
	}

	v := m.View()
	if v.Selected != "Orion" || v.Zoom != 2.2 || v.Collapsed {
		t.Errorf("view = %+v", v)
	}
	if !v.Loading || v.Pending != req.ID {
		t.Error("selection should be loading with the request pending")
	}

	wantRA := astro.CircularMeanRA([]float64{80, 90, 82, 88})
	wantDec := (10 + 6 - 8 - 4) / 4.0
	if math.Abs(v.Focus.RAdeg-wantRA) > 1e-9 || math.Abs(v.Focus.DecDeg-wantDec) > 1e-9 {
		t.Errorf("Focus = %+v, want (%v, %v)", v.Focus, wantRA, wantDec)
	}

	x, y, ok := v.Center(1000, 500)
	wantX, wantY := astro.Project(wantRA, wantDec, 1000, 500)
	if !ok || math.Abs(x-wantX) > 1e-9 || math.Abs(y-wantY) > 1e-9 {
		t.Errorf("Center = (%v, %v), want (%v, %v)", x, y, wantX, wantY)
	}
}

func TestMachine_CenterFollowsResize(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	m.Click("Lyra")
	v := m.View()

	x1, y1, _ := v.Center(1000, 500)
	x2, y2, _ := v.Center(2000, 1000)
	if math.Abs(x2-2*x1) > 1e-9 || math.Abs(y2-2*y1) > 1e-9 {
		t.Errorf("center did not scale with canvas: (%v, %v) vs (%v, %v)", x1, y1, x2, y2)
	}
}

func TestMachine_ClickSelectedTogglesCollapsed(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	m.Click("Orion")
	before := m.View()

	if _, ok := m.Click("Orion"); ok {
		t.Error("re-click should not issue a request")
	}
	after := m.View()
	if !after.Collapsed {
		t.Error("re-click should collapse")
	}
	if after.Focus != before.Focus || after.Zoom != before.Zoom || after.Selected != "Orion" {
		t.Error("re-click must not change center or zoom")
	}

	m.Click("Orion")
	if m.View().Collapsed {
		t.Error("second re-click should expand")
	}
}

func TestMachine_ClickNothing(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	m.Click("Orion")
	before := m.View()

	if _, ok := m.Click(""); ok {
		t.Error("click on empty space should not issue a request")
	}
	if m.View() != before {
		t.Error("click on empty space changed state")
	}
}

func TestMachine_ClickOtherConstellation(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	first, _ := m.Click("Orion")
	m.Click("Orion") // collapse

	second, ok := m.Click("Lyra")
	if !ok || second.ID == first.ID {
		t.Fatal("selecting another constellation should issue a new request")
	}
	v := m.View()
	if v.Selected != "Lyra" || v.Collapsed {
		t.Errorf("view = %+v", v)
	}
}

func TestMachine_ShowAll(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	req, _ := m.Click("Orion")
	m.ApplyMetadata(Result{ID: req.ID, Record: metadata.Record{Name: "Orion"}})
	m.Click("Orion")

	m.ShowAll()
	v := m.View()
	if v.IsSelected() || v.Zoom != 1 || v.Collapsed || v.Metadata != nil || v.Loading {
		t.Errorf("ShowAll left state %+v", v)
	}
	if _, _, ok := v.Center(100, 50); ok {
		t.Error("ShowAll should clear the center")
	}
}

func TestMachine_SelectByName(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())

	req, ok, err := m.SelectByName("peg")
	if err != nil || !ok || req.Name != "Pegasus" {
		t.Fatalf("SelectByName(peg) = %+v, %v, %v", req, ok, err)
	}

	// Pegasus straddles RA 0: the focus must not land on the far side.
	if f := m.View().Focus.RAdeg; f > 1e-6 && f < 359.999 {
		t.Errorf("Pegasus focus RA = %v, want ~0", f)
	}

	_, ok, err = m.SelectByName("Pegasus")
	if err != nil || ok {
		t.Errorf("re-selecting current selection should be a no-op, got %v, %v", ok, err)
	}
	if m.View().Pending != req.ID {
		t.Error("no-op selection replaced the pending request")
	}

	before := m.View()
	_, _, err = m.SelectByName("Nonexistent")
	if !errors.Is(err, ErrUnknownConstellation) {
		t.Errorf("err = %v, want ErrUnknownConstellation", err)
	}
	if m.View() != before {
		t.Error("unknown name changed state")
	}
}

func TestMachine_ApplyMetadata(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	req, _ := m.Click("Orion")

	rec := metadata.Record{Name: "Orion", Description: "The hunter", Area: "594"}
	if !m.ApplyMetadata(Result{ID: req.ID, Record: rec}) {
		t.Fatal("matching result should be applied")
	}

	v := m.View()
	if v.Loading || v.Metadata == nil || v.Metadata.Description != "The hunter" || v.MetadataErr != nil {
		t.Errorf("view after metadata = %+v", v)
	}
	if v.Pending != uuid.Nil {
		t.Error("pending request should be cleared")
	}
}

func TestMachine_ApplyMetadata_DiscardsStale(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	orion, _ := m.Click("Orion")
	lyra, _ := m.Click("Lyra")

	// The Orion response arrives after Lyra was selected.
	if m.ApplyMetadata(Result{ID: orion.ID, Record: metadata.Record{Name: "Orion"}}) {
		t.Error("stale result should be discarded")
	}
	v := m.View()
	if v.Metadata != nil || !v.Loading {
		t.Error("stale result must not touch state")
	}

	if !m.ApplyMetadata(Result{ID: lyra.ID, Record: metadata.Record{Name: "Lyra"}}) {
		t.Error("current result should be applied")
	}

	// Anything after ShowAll is stale too.
	req, _ := m.Click("Orion")
	m.ShowAll()
	if m.ApplyMetadata(Result{ID: req.ID}) {
		t.Error("result after ShowAll should be discarded")
	}
}

func TestMachine_ApplyMetadata_Failure(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	req, _ := m.Click("Lyra")

	fetchErr := errors.New("timeout")
	m.ApplyMetadata(Result{ID: req.ID, Err: fetchErr})

	v := m.View()
	if v.Metadata == nil {
		t.Fatal("failure should install the fallback record")
	}
	if !v.Metadata.Fallback || v.Metadata.Area != "N/A" || v.Metadata.BrightestStar != "Unknown" {
		t.Errorf("fallback = %+v", v.Metadata)
	}
	if v.Metadata.Name != "Lyra" || v.Metadata.Description == "" {
		t.Errorf("fallback = %+v", v.Metadata)
	}
	if !errors.Is(v.MetadataErr, fetchErr) {
		t.Errorf("MetadataErr = %v", v.MetadataErr)
	}
}

func TestMachine_Retry(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	if _, ok := m.Retry(); ok {
		t.Error("retry with nothing selected should do nothing")
	}

	first, _ := m.Click("Lyra")
	if _, ok := m.Retry(); ok {
		t.Error("retry while loading should do nothing")
	}
	m.ApplyMetadata(Result{ID: first.ID, Err: errors.New("down")})

	again, ok := m.Retry()
	if !ok || again.ID == first.ID || again.Name != "Lyra" {
		t.Fatalf("Retry = %+v, %v", again, ok)
	}
	if !m.View().Loading {
		t.Error("retry should set loading")
	}
	if m.ApplyMetadata(Result{ID: first.ID}) {
		t.Error("old request id should now be stale")
	}
}

func TestMachine_RetryKeepsLoadedMetadata(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	req, _ := m.Click("Lyra")
	m.ApplyMetadata(Result{ID: req.ID, Record: metadata.Fallback("Lyra")})

	if _, ok := m.Retry(); ok {
		t.Fatal("retry after a successful fetch should do nothing")
	}
	v := m.View()
	if v.Loading || v.Metadata == nil {
		t.Errorf("loaded metadata discarded: %+v", v)
	}
}

func TestMachine_Transform(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	m.Click("Lyra")

	tr := m.View().Transform(1000, 500)
	if !tr.Active() || tr.Zoom != 2.2 {
		t.Errorf("transform = %+v", tr)
	}
	if tr.CenterY < 500/2/2.2-1e-9 {
		t.Errorf("center y %v not clamped", tr.CenterY)
	}
}

func TestMachine_EventRingBuffer(t *testing.T) {
	m := NewMachine(testCatalog(), Config{FocusZoom: 2.2, MaxEvents: 3})

	m.Click("Orion")
	m.Click("Orion")
	m.Click("Orion")
	m.ShowAll()

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	want := []EventType{EventCollapsed, EventExpanded, EventCleared}
	for i, e := range events {
		if e.Type != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, e.Type, want[i])
		}
	}

	if got := m.RecentEvents(1); len(got) != 1 || got[0].Type != EventCleared {
		t.Errorf("RecentEvents(1) = %+v", got)
	}
}

func TestMachine_ConcurrentAccess(t *testing.T) {
	m := NewMachine(testCatalog(), DefaultConfig())
	names := []string{"Orion", "Lyra", "Pegasus", ""}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				req, _ := m.Click(names[(i+j)%len(names)])
				m.ApplyMetadata(Result{ID: req.ID})
				_ = m.View()
				if j%10 == 0 {
					m.ShowAll()
				}
			}
		}(i)
	}
	wg.Wait()
}
