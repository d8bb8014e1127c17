package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBirthday(year int, month time.Month, day int) AgentData {
	return AgentData{Birthday: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func TestAge(t *testing.T) {
	d := withBirthday(2000, time.February, 15)

	assert.Equal(t, 0, d.Age(time.Date(2000, time.February, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, d.Age(time.Date(2000, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, d.Age(time.Date(2001, time.February, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, d.Age(time.Date(2001, time.February, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, d.Age(time.Date(2001, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 10, d.Age(time.Date(2010, time.February, 15, 0, 0, 0, 0, time.UTC)))
}

func TestEducationDegreeOrdering(t *testing.T) {
	assert.Less(t, int(NoDegree), int(HighSchool))
	assert.Less(t, int(HighSchool), int(Undergrad))
	assert.Less(t, int(Undergrad), int(Masters))
	assert.Less(t, int(Masters), int(Phd))
}

func TestEducationDegreeFromYears(t *testing.T) {
	assert.Equal(t, NoDegree, EducationDegreeFromYears(0))
	assert.Equal(t, HighSchool, EducationDegreeFromYears(12))
	assert.Equal(t, Undergrad, EducationDegreeFromYears(16))
	assert.Equal(t, Masters, EducationDegreeFromYears(17))
	assert.Equal(t, Phd, EducationDegreeFromYears(20))
}

func TestExpectedWorkplaceHappiness(t *testing.T) {
	d := AgentData{}
	assert.Equal(t, 1.0, d.ExpectedWorkplaceHappiness(0))
	assert.InDelta(t, 0.5, d.ExpectedWorkplaceHappiness(commuteLengthTolerance/2), 1e-9)
	assert.Equal(t, 0.0, d.ExpectedWorkplaceHappiness(commuteLengthTolerance))
	assert.Equal(t, 0.0, d.ExpectedWorkplaceHappiness(commuteLengthTolerance*2))
	assert.Panics(t, func() { d.ExpectedWorkplaceHappiness(-1) })
}
