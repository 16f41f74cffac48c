package diag_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/declgen/diag"
)

func TestBag_ConcurrentAddAndSortedItems(t *testing.T) {
	bag := diag.NewBag()

	var wg sync.WaitGroup
	for _, subject := range []string{"c.resx", "a.resx", "b.resx"} {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			bag.Add(diag.Warnf(diag.CodeParse, s, "bad"))
		}(subject)
	}
	wg.Wait()

	items := bag.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a.resx", items[0].Subject)
	assert.Equal(t, "b.resx", items[1].Subject)
	assert.Equal(t, "c.resx", items[2].Subject)
	assert.False(t, bag.HasErrors())
}

func TestBag_ItemsDeduplicates(t *testing.T) {
	bag := diag.NewBag()
	d := diag.Errorf(diag.CodeConsistency, "App.Strings", "className disagrees")
	bag.Add(d, d)

	assert.Equal(t, 2, bag.Len())
	assert.Len(t, bag.Items(), 1)
	assert.True(t, bag.HasErrors())
}

func TestCompare_WorstSeverityFirst(t *testing.T) {
	warn := diag.Warnf(diag.CodeParse, "x", "w")
	err := diag.Errorf(diag.CodeParse, "x", "e")

	seq := diag.Seq(warn, err)
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, diag.SeverityError, seq.At(0).Severity)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	diag.Render(&buf, []diag.Diagnostic{diag.Errorf(diag.CodeResolution, "../outside.resx", "path is outside the project root")})

	assert.Contains(t, buf.String(), "DG1001")
	assert.Contains(t, buf.String(), "../outside.resx")
	assert.Contains(t, buf.String(), "path is outside the project root")
}
