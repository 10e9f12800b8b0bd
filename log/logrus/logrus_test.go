package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/encstore"
)

func TestLevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("d", encstore.Fields{"op": "set"})
	l.Info("i", nil)
	l.Warn("w", encstore.Fields{"err": errors.New("boom"), "key": "k"})
	l.Error("e", nil)

	entries := hook.AllEntries()
	if len(entries) != 4 {
		t.Fatalf("got %d entries", len(entries))
	}
	want := []logrus.Level{logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d level = %s", i, e.Level)
		}
		if e.Data["component"] != "encstore" {
			t.Fatalf("component tag missing: %v", e.Data)
		}
	}
	if entries[0].Data["op"] != "set" {
		t.Fatalf("fields = %v", entries[0].Data)
	}
	w := entries[2]
	if err, _ := w.Data[logrus.ErrorKey].(error); err == nil || err.Error() != "boom" {
		t.Fatalf("error not attached via WithError: %v", w.Data)
	}
	if w.Data["key"] != "k" {
		t.Fatalf("other fields lost: %v", w.Data)
	}
}

func TestLevelFiltering(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.WarnLevel)
	l := New(base)
	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warn("w", nil)
	if len(hook.AllEntries()) != 1 || hook.LastEntry().Message != "w" {
		t.Fatalf("level filter not applied: %v", hook.AllEntries())
	}
}
