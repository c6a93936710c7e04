package models

import "testing"

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID == "" {
		t.Fatal("expected base model ID to be generated")
	}
}

func TestBaseModelBeforeCreateKeepsExplicitID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID != "fixed" {
		t.Fatalf("expected explicit id to be preserved, got %q", base.ID)
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"notification", func() *BaseModel {
			n := &Notification{}
			return &n.BaseModel
		}},
		{"project", func() *BaseModel {
			p := &Project{}
			return &p.BaseModel
		}},
		{"task", func() *BaseModel {
			m := &Task{}
			return &m.BaseModel
		}},
		{"task_comment", func() *BaseModel {
			c := &TaskComment{}
			return &c.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := tc.model()
			if err := base.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if base.ID == "" {
				t.Fatalf("expected %s id to be generated", tc.name)
			}
		})
	}
}
