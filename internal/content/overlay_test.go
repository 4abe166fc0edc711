package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pace-commit/commit-site/internal/testutil"
)

func newTestResolver() *Resolver {
	return NewResolver(DefaultContent(), testutil.TestLoggerSilent())
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestText(t *testing.T) {
	assert.Equal(t, "dyn", Text("dyn", "static"))
	assert.Equal(t, "static", Text("", "static"))
	assert.Equal(t, "", Text("", ""))
}

func TestItems_MatchByID(t *testing.T) {
	static := []Item{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	dynamic := []Item{{ID: "b", Title: "B2"}}

	got := Items(static, dynamic)
	assert.Equal(t, []Item{{ID: "a", Title: "A"}, {ID: "b", Title: "B2"}}, got)
}

func TestItems_StaticOrderAndMembership(t *testing.T) {
	static := []Item{
		{ID: "a", Title: "A", Description: "da"},
		{ID: "b", Title: "B", Description: "db"},
		{ID: "c", Title: "C", Description: "dc"},
	}
	dynamic := []Item{
		{ID: "zzz", Title: "Unknown"},
		{ID: "c", Description: "dc2"},
		{ID: "a", Title: "A2"},
	}

	got := Items(static, dynamic)
	want := []Item{
		{ID: "a", Title: "A2", Description: "da"},
		{ID: "b", Title: "B", Description: "db"},
		{ID: "c", Title: "C", Description: "dc2"},
	}
	assert.Equal(t, want, got)
}

func TestItems_DoesNotAliasStatic(t *testing.T) {
	static := []Item{{ID: "a", Title: "A"}}
	got := Items(static, []Item{{ID: "a", Title: "A2"}})
	got[0].Title = "changed"
	assert.Equal(t, "A", static[0].Title)
}

func TestResolveAbout_DefaultsWhenAbsent(t *testing.T) {
	r := newTestResolver()
	d := DefaultContent()

	about := r.ResolveAbout(Map{})
	assert.Equal(t, d.Company, about.Company)
	assert.Equal(t, d.Values, about.Values)

	about = r.ResolveAbout(nil)
	assert.Equal(t, d.Company.Mission, about.Mission)
}

func TestResolveAbout_PerFieldOverlay(t *testing.T) {
	r := newTestResolver()
	d := DefaultContent()

	m := Map{KeyCompanyInfo: raw(t, map[string]string{"mission": "X"})}
	about := r.ResolveAbout(m)

	assert.Equal(t, "X", about.Mission)
	assert.Equal(t, d.Company.Overview, about.Overview)
	assert.Equal(t, d.Company.Vision, about.Vision)
	assert.Equal(t, "CommIT Enterprise", about.Name)
}

func TestResolveAbout_EmptyStringFallsBack(t *testing.T) {
	r := newTestResolver()
	m := Map{KeyCompanyInfo: raw(t, CompanyInfo{Overview: "", Mission: "M", Vision: ""})}

	about := r.ResolveAbout(m)
	assert.Equal(t, DefaultContent().Company.Overview, about.Overview)
	assert.Equal(t, "M", about.Mission)
}

func TestResolve_MalformedPayloadIsAbsent(t *testing.T) {
	r := newTestResolver()
	d := DefaultContent()

	about := r.ResolveAbout(Map{
		KeyCompanyInfo: json.RawMessage(`["not","an","object"]`),
		KeyValues:      json.RawMessage(`{"id":"integrity"}`),
	})
	assert.Equal(t, d.Company, about.Company)
	assert.Equal(t, d.Values, about.Values)

	contact := r.ResolveContact(Map{KeyInfo: json.RawMessage(`"just a string"`)})
	assert.Equal(t, d.Contact, contact)

	services := r.ResolveServices(Map{KeyList: json.RawMessage(`null`)})
	assert.Equal(t, d.Services, services)
}

func TestResolveServices_Overlay(t *testing.T) {
	r := newTestResolver()
	m := Map{KeyList: raw(t, []Item{{ID: "procurement", Title: "Sourcing"}})}

	services := r.ResolveServices(m)
	require.Len(t, services, 4)
	assert.Equal(t, "ict", services[0].ID)
	assert.Equal(t, "Sourcing", services[2].Title)
	assert.Equal(t, DefaultContent().Services[2].Description, services[2].Description)
}

func TestResolveContact_Overlay(t *testing.T) {
	r := newTestResolver()
	m := Map{KeyInfo: raw(t, ContactInfo{Phone: "+220 000 0000"})}

	c := r.ResolveContact(m)
	assert.Equal(t, "+220 000 0000", c.Phone)
	assert.Equal(t, "scattred@pace-commit.com", c.Email)
}

func TestResolve_Dispatch(t *testing.T) {
	r := newTestResolver()

	for _, view := range []string{ViewAbout, ViewServices, ViewValues, ViewContact} {
		v, err := r.Resolve(view, Map{})
		require.NoError(t, err, view)
		assert.NotNil(t, v, view)
	}

	_, err := r.Resolve("pricing", Map{})
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestViewSection(t *testing.T) {
	s, ok := ViewSection(ViewValues)
	assert.True(t, ok)
	assert.Equal(t, SectionAbout, s)

	_, ok = ViewSection("pricing")
	assert.False(t, ok)
}

func TestResolveAll(t *testing.T) {
	r := newTestResolver()
	all := AllMap{
		SectionAbout:   {KeyValues: raw(t, []Item{{ID: "integrity", Title: "Honesty"}})},
		SectionContact: {KeyInfo: raw(t, ContactInfo{Address: "Banjul"})},
	}

	site := r.ResolveAll(all)
	assert.Equal(t, "Honesty", site.Values[0].Title)
	assert.Equal(t, "Honesty", site.About.Values[0].Title)
	assert.Equal(t, "Banjul", site.Contact.Address)
	assert.Equal(t, DefaultContent().Services, site.Services)
}

func TestEditorState(t *testing.T) {
	r := newTestResolver()
	d := DefaultContent()

	st := r.EditorState(AllMap{})
	assert.Equal(t, d.Company.Overview, st.About.Overview)
	assert.Equal(t, d.Values, st.Values)
	assert.Equal(t, d.Services, st.Services)
	assert.Equal(t, d.Contact, st.Contact)

	saved := []Item{{ID: "ict", Title: "Networks"}}
	st = r.EditorState(AllMap{SectionServices: {KeyList: raw(t, saved)}})
	assert.Equal(t, saved, st.Services)
}

func TestDefaultContent_IsACopy(t *testing.T) {
	d := DefaultContent()
	d.Services[0].Title = "changed"
	assert.NotEqual(t, "changed", DefaultContent().Services[0].Title)
}
