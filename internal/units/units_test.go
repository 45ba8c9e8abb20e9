package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTemperatureFixedPoints(t *testing.T) {
	assert.Equal(t, 0.0, ConvertTemperature(0, Celsius))
	assert.Equal(t, 32.0, ConvertTemperature(0, Fahrenheit))
	assert.Equal(t, 212.0, ConvertTemperature(100, Fahrenheit))
	assert.Equal(t, -40.0, ConvertTemperature(-40, Fahrenheit))
}

func TestConvertWindSpeed(t *testing.T) {
	cases := []struct {
		unit WindUnit
		want float64
	}{
		{MilesPerHour, 22.3694},
		{KilometersPerHour, 36},
		{Knots, 19.4384},
		{MetersPerSecond, 10},
	}
	for _, tc := range cases {
		t.Run(string(tc.unit), func(t *testing.T) {
			assert.InDelta(t, tc.want, ConvertWindSpeed(10, tc.unit), 1e-9)
		})
	}
}

func TestConvertPressureAndRain(t *testing.T) {
	assert.InDelta(t, 29.9212725, ConvertPressure(1013.25, InchesOfMercury), 1e-9)
	assert.Equal(t, 1013.25, ConvertPressure(1013.25, Millibar))
	assert.Equal(t, 1013.25, ConvertPressure(1013.25, Hectopascal))

	assert.InDelta(t, 1.0, ConvertRain(25.4, Inch), 1e-5)
	assert.Equal(t, 25.4, ConvertRain(25.4, Millimeter))
}

func TestUnknownUnitsFallBackToMetric(t *testing.T) {
	assert.Equal(t, 21.5, ConvertTemperature(21.5, TemperatureUnit("K")))
	assert.Equal(t, 4.2, ConvertWindSpeed(4.2, WindUnit("beaufort")))
	assert.Equal(t, 1000.0, ConvertPressure(1000, PressureUnit("atm")))
	assert.Equal(t, 3.0, ConvertRain(3, RainUnit("cm")))

	assert.Equal(t, "22°C", FormatTemperature(21.5, TemperatureUnit("K")))
	assert.Equal(t, "4.2 ms", FormatWindSpeed(4.2, WindUnit("beaufort")))
	assert.Equal(t, "1000.0 mb", FormatPressure(1000, PressureUnit("")))
	assert.Equal(t, "3.0 mm", FormatRain(3, RainUnit("cm")))
}

func TestFormatting(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"pressure inHg", FormatPressure(1013.25, InchesOfMercury), "29.92 inHg"},
		{"pressure mb rounds half up", FormatPressure(1013.25, Millibar), "1013.3 mb"},
		{"pressure hPa", FormatPressure(1018.4, Hectopascal), "1018.4 hPa"},
		{"wind mph", FormatWindSpeed(10, MilesPerHour), "22.4 mph"},
		{"wind kts", FormatWindSpeed(3.8, Knots), "7.4 kts"},
		{"rain in", FormatRain(25.4, Inch), "1.00 in"},
		{"rain mm", FormatRain(4.2, Millimeter), "4.2 mm"},
		{"rain small in", FormatRain(3.81, Inch), "0.15 in"},
		{"temp F", FormatTemperature(22.2, Fahrenheit), "72°F"},
		{"temp C", FormatTemperature(7.8, Celsius), "8°C"},
		{"temp half rounds up", FormatTemperature(-0.5, Celsius), "0°C"},
		{"temp negative", FormatTemperature(-1.4, Celsius), "-1°C"},
		{"no negative zero", FormatWindSpeed(-0.01, MetersPerSecond), "0.0 ms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestFormattingIsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "29.92 inHg", FormatPressure(1013.25, InchesOfMercury))
		assert.InDelta(t, 22.3694, ConvertWindSpeed(10, MilesPerHour), 1e-9)
	}
}

func TestMeasure(t *testing.T) {
	r, err := Measure(FamilyWind, 10, "mph")
	require.NoError(t, err)
	assert.Equal(t, "mph", r.Unit)
	assert.InDelta(t, 22.3694, r.Value, 1e-9)
	assert.Equal(t, "22.4 mph", r.Display)

	r, err = Measure(FamilyPressure, 1013.25, "bogus")
	require.NoError(t, err)
	assert.Equal(t, "mb", r.Unit)
	assert.Equal(t, "1013.3 mb", r.Display)

	r, err = Measure(FamilyTemperature, 100, "F")
	require.NoError(t, err)
	assert.Equal(t, 212.0, r.Value)
	assert.Equal(t, "212°F", r.Display)

	_, err = Measure(Family("humidity"), 50, "%")
	require.ErrorIs(t, err, ErrUnknownFamily)
}

func TestValid(t *testing.T) {
	assert.True(t, Fahrenheit.Valid())
	assert.False(t, TemperatureUnit("f").Valid())
	assert.True(t, Knots.Valid())
	assert.False(t, WindUnit("knots").Valid())
	assert.True(t, Hectopascal.Valid())
	assert.True(t, Inch.Valid())
	assert.False(t, RainUnit("").Valid())
}
