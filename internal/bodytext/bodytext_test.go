package bodytext

import "testing"

func TestStripSections(t *testing.T) {
	labels := []string{"🧩 Squad responsable", "📈 Reach estimado", "📦 Effort (Size)"}

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "form sections removed, others kept",
			body: "### Problem\n\nCheckout is slow.\n\n### 🧩 Squad responsable\n\nsquad-cost\n\n### 📈 Reach estimado\n\n1000\n\n### Notes\n\nKeep me.\n",
			want: "### Problem\n\nCheckout is slow.\n\n\n\n### Notes\n\nKeep me.",
		},
		{
			name: "last section runs to end",
			body: "### Problem\n\nSlow.\n\n### 📦 Effort (Size)\n\neffort-large\n",
			want: "### Problem\n\nSlow.",
		},
		{
			name: "label with regexp metacharacters matched literally",
			body: "### 📦 Effort XSize)\n\nkeep\n",
			want: "### 📦 Effort XSize)\n\nkeep",
		},
		{
			name: "nothing to strip only trims",
			body: "  plain body \n\n",
			want: "plain body",
		},
		{
			name: "only form sections",
			body: "### 🧩 Squad responsable\n\nsquad-cost\n### 📈 Reach estimado\n5\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSections(tt.body, labels); got != tt.want {
				t.Errorf("StripSections() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripSectionsIdempotent(t *testing.T) {
	labels := []string{"📊 Impact"}
	body := "### Intro\n\nhi\n\n### 📊 Impact\n\nimpact-high\n"
	once := StripSections(body, labels)
	if twice := StripSections(once, labels); twice != once {
		t.Errorf("second strip changed body: %q -> %q", once, twice)
	}
}
