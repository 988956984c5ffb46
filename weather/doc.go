// Package weather implements the travel weather microservice and the skills
// that call it.
//
// Server answers GET /countries/{country}/{city}/{month} with the average
// monthly high and low temperature (Fahrenheit) from a static dataset.
// Client queries such a server and caches answers. TravelWeather exposes the
// client to the kernel as the native function travel_weather.
package weather
