package importer

import "testing"

func TestParseBundle_BundleShape(t *testing.T) {
	data := []byte(`{"articles":[{"id":1,"title":"晨跑","date":"2025-01-01","category":"训练","content":"x"}],"events":[{"id":2,"name":"半马","date":"2025-02-02","distance":21.0975,"location":"苏州","finishTime":"1:50:00","category":"半马"}]}`)
	b, err := ParseBundle(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Articles) != 1 || b.Articles[0].Title != "晨跑" {
		t.Errorf("articles = %+v", b.Articles)
	}
	if len(b.Events) != 1 || b.Events[0].FinishTime != "1:50:00" {
		t.Errorf("events = %+v", b.Events)
	}
}

func TestParseBundle_LegacyArticleArray(t *testing.T) {
	data := []byte(`[{"id":9,"title":"旧数据","date":"2024-12-12","category":"心得","content":"y"}]`)
	b, err := ParseBundle(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Articles) != 1 || b.Articles[0].ID != 9 {
		t.Errorf("articles = %+v", b.Articles)
	}
	if len(b.Events) != 0 {
		t.Errorf("events = %+v, want none", b.Events)
	}
}

func TestParseBundle_EventsOnly(t *testing.T) {
	b, err := ParseBundle([]byte(`{"events":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Events == nil {
		t.Error("events slice should be present even when empty")
	}
}

func TestParseBundle_Rejections(t *testing.T) {
	for _, data := range []string{
		`not json at all`,
		`{"articles": 1}`,
		`"just a string"`,
		`123`,
	} {
		if _, err := ParseBundle([]byte(data)); err == nil {
			t.Errorf("ParseBundle(%q) accepted, want error", data)
		}
	}
}
