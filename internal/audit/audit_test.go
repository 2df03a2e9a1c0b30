// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
)

const owned = `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
#1=IFCPERSON('aleyna','Kircali','Aleyna',$,$,$,$,$);
#2=IFCORGANIZATION($,'ifctrack',$,$,$);
#3=IFCPERSONANDORGANIZATION(#1,#2,$);
#4=IFCPERSON('mohamed',$,$,$,$,$,$,$);
#5=IFCPERSONANDORGANIZATION(#4,#2,$);
#10=IFCOWNERHISTORY(#3,$,$,.MODIFIED.,1740000000,#5,$,1738400400);
#11=IFCOWNERHISTORY(#3,$,$,.ADDED.,$,$,$,1738400400);
#20=IFCBUILDINGELEMENTPROXY('1Modified000000000000a',#10,'m',$,$,$,$,$,$);
#21=IFCBUILDINGELEMENTPROXY('1Created0000000000000a',#11,'c',$,$,$,$,$,$);
#22=IFCBUILDINGELEMENTPROXY('1Orphan00000000000000a',$,'o',$,$,$,$,$,$);
ENDSEC;
END-ISO-10303-21;
`

func TestRandomAssigner(t *testing.T) {
	a, err := NewRandomAssigner(NewSeeded(42), nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, DefaultUsers, a.Users)

	latest := DefaultTo.Add(24 * time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		got := a.Assign(differ.Change{})
		assert.Contains(t, DefaultUsers, got.User)
		assert.False(t, got.Timestamp.Before(DefaultFrom), got.Timestamp)
		assert.False(t, got.Timestamp.After(latest), got.Timestamp)
		seen[got.User] = true
	}
	assert.Len(t, seen, len(DefaultUsers))
}

func TestRandomAssignerSeeded(t *testing.T) {
	draw := func(seed uint64) []Attribution {
		a, err := NewRandomAssigner(NewSeeded(seed), []string{"u1", "u2"}, DefaultFrom, DefaultTo)
		require.NoError(t, err)
		var out []Attribution
		for i := 0; i < 20; i++ {
			out = append(out, a.Assign(differ.Change{}))
		}
		return out
	}
	assert.Equal(t, draw(7), draw(7))
	assert.NotEqual(t, draw(7), draw(8))
}

func TestRandomAssignerRange(t *testing.T) {
	_, err := NewRandomAssigner(NewSeeded(1), nil, DefaultTo, DefaultFrom)
	assert.Error(t, err)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a, err := NewRandomAssigner(NewSeeded(1), []string{"solo"}, day, day)
	require.NoError(t, err)
	got := a.Assign(differ.Change{})
	assert.Equal(t, "solo", got.User)
	assert.False(t, got.Timestamp.After(day.Add(24*time.Hour)))
}

func TestRandomAssignerNilSource(t *testing.T) {
	a, err := NewRandomAssigner(nil, []string{"solo"}, DefaultFrom, DefaultTo)
	require.NoError(t, err)
	got := a.Assign(differ.Change{})
	assert.Equal(t, "solo", got.User)
	assert.False(t, got.Timestamp.Before(DefaultFrom))
}

func TestHistoryAssigner(t *testing.T) {
	m, err := ifc.Parse([]byte(owned))
	require.NoError(t, err)
	entity := func(id string) *ifc.Entity {
		e, ok := m.EntityByGlobalID(id)
		require.True(t, ok, id)
		return e
	}

	tests := []struct {
		name   string
		change differ.Change
		want   Attribution
	}{
		{
			name:   "last modifying user",
			change: differ.Change{Kind: differ.Modified, Entity: entity("1Modified000000000000a")},
			want:   Attribution{User: "mohamed", Timestamp: time.Unix(1740000000, 0).UTC()},
		},
		{
			name:   "owning user and creation date",
			change: differ.Change{Kind: differ.Deleted, Entity: entity("1Created0000000000000a")},
			want:   Attribution{User: "Aleyna Kircali", Timestamp: time.Unix(1738400400, 0).UTC()},
		},
		{
			name:   "no owner history",
			change: differ.Change{Kind: differ.Added, Entity: entity("1Orphan00000000000000a")},
			want:   Attribution{User: UnknownUser},
		},
		{
			name:   "no entity",
			change: differ.Change{},
			want:   Attribution{User: UnknownUser},
		},
	}

	var a UserAssigner = HistoryAssigner{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Assign(tt.change))
		})
	}
}
