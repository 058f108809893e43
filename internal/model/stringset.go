package model

import (
	"sort"
	"strings"
)

// setSeparator は共有ストア上でのコレクションの区切り文字。
const setSeparator = ","

// StringSet は重複のない文字列集合を表す。
// available_dates、friends、friend_requestsの内部表現として使用する。
type StringSet map[string]struct{}

// NewStringSet は指定された値からStringSetを生成する。空文字列は無視する。
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// DecodeStringSet はカンマ区切り文字列からStringSetを復元する。
// 各要素の前後空白は除去し、空要素は無視する。
func DecodeStringSet(encoded string) StringSet {
	s := NewStringSet()
	for _, part := range strings.Split(encoded, setSeparator) {
		if v := strings.TrimSpace(part); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Encode は集合をカンマ区切り文字列にシリアライズする。
// 出力を決定的にするため要素は辞書順に並べる。
func (s StringSet) Encode() string {
	return strings.Join(s.Values(), setSeparator)
}

// Contains は要素が集合に含まれるかを返す。
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Add は要素を追加する。既に存在する場合は何もしない。
func (s StringSet) Add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

// Remove は要素を削除する。存在しない場合は何もしない。
func (s StringSet) Remove(v string) {
	delete(s, v)
}

// Len は要素数を返す。
func (s StringSet) Len() int {
	return len(s)
}

// Values は全要素を辞書順で返す。
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Clone は集合のコピーを返す。
func (s StringSet) Clone() StringSet {
	c := make(StringSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}
