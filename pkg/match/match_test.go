package match

import (
	"testing"

	"github.com/urmzd/yeehome/pkg/topology"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"客厅 灯带", "客厅灯带"},
		{" 主卧\t灯 ", "主卧灯"},
		{"ＡＢＣ１２３", "ABC123"},
		{"射灯（一）", "射灯(1)"},
		{"三楼走廊", "3楼走廊"},
		{"零一二三四五六七八九", "0123456789"},
		{"客厅　射灯", "客厅射灯"},
		{"卧室カーテン", "卧室カーテン"},
		{"ガレージ灯", "ガレージ灯"},
		{"ｶｰﾃﾝ", "ｶｰﾃﾝ"},
		{"开灯。", "开灯。"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"客厅 灯带", "ＡＢＣ　１２３", "二楼 卧室（主）", "Living Room 1", "　 ", "零",
		"ｈｅｌｌｏ，ｗｏｒｌｄ！", "a.b*c",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		device, target string
		want           Rule
	}{
		{"灯", "灯", RuleExact},
		{"客厅 灯带", "客厅灯带", RuleExact},
		{"灯带", "灯", RulePrefix},
		{"客厅射灯1", "射灯", RuleSubstring},
		{"客厅射灯一", "射灯1", RuleSubstring},
		{"卧室灯", "客厅", RuleNone},
		{"灯", "", RuleNone},
		{"灯", " 　\t", RuleNone},
		{"カーテン", "カーテン", RuleExact},
		{"灯(主)", "(主)", RuleSubstring},
		{"灯a", ".", RuleNone},
		{"灯*", "*", RuleSubstring},
	}
	for _, tt := range tests {
		if got := Classify(tt.device, tt.target); got != tt.want {
			t.Errorf("Classify(%q, %q) = %s, want %s", tt.device, tt.target, got, tt.want)
		}
	}
}

func names(nodes []topology.NodeInfo) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestFindByName(t *testing.T) {
	nodes := []topology.NodeInfo{
		{ID: 1, Name: "客厅射灯1"},
		{ID: 2, Name: "射灯2"},
		{ID: 3, Name: "卧室吊灯"},
	}
	got := names(FindByName(nodes, "射灯"))
	if len(got) != 2 || got[0] != "客厅射灯1" || got[1] != "射灯2" {
		t.Errorf("FindByName = %v", got)
	}
}

func TestFindByName_EachCandidateJudgedAlone(t *testing.T) {
	nodes := []topology.NodeInfo{
		{ID: 1, Name: "灯"},
		{ID: 2, Name: "灯带"},
	}
	got := names(FindByName(nodes, "灯"))
	if len(got) != 2 || got[0] != "灯" || got[1] != "灯带" {
		t.Errorf("FindByName = %v", got)
	}
}

func TestFindByName_NoMatch(t *testing.T) {
	nodes := []topology.NodeInfo{{ID: 1, Name: "客厅灯"}}
	if got := FindByName(nodes, "车库"); len(got) != 0 {
		t.Errorf("FindByName = %v, want empty", names(got))
	}
	if got := FindByName(nil, "灯"); len(got) != 0 {
		t.Errorf("FindByName(nil) = %v", names(got))
	}
}
