package geo

import "github.com/turismolocal/poiscan/internal/model"

// curated holds the hand-tuned VIP zones: historic center, the World Cup
// stadiums and the districts where visitors actually concentrate. Radii are
// tuned per zone; dense districts get tighter circles than the grid default.
var curated = []model.Zone{
	{Lat: 19.4326, Lng: -99.1332, Name: "Centro Histórico", RadiusMeters: 2500},
	{Lat: 19.3029, Lng: -99.1505, Name: "Estadio Azteca", RadiusMeters: 2000},
	{Lat: 19.4361, Lng: -99.1747, Name: "Zona Rosa", RadiusMeters: 1500},
	{Lat: 19.4153, Lng: -99.1706, Name: "Roma Norte", RadiusMeters: 1800},
	{Lat: 19.4115, Lng: -99.1776, Name: "Condesa", RadiusMeters: 1800},
	{Lat: 19.4319, Lng: -99.1937, Name: "Polanco", RadiusMeters: 2200},
	{Lat: 19.4260, Lng: -99.1861, Name: "Chapultepec", RadiusMeters: 2500},
	{Lat: 19.3467, Lng: -99.1617, Name: "Coyoacán Centro", RadiusMeters: 2000},
	{Lat: 19.2647, Lng: -99.1031, Name: "Xochimilco Embarcaderos", RadiusMeters: 2500},
	{Lat: 19.4847, Lng: -99.1177, Name: "Basílica de Guadalupe", RadiusMeters: 1800},
	{Lat: 19.3587, Lng: -99.2536, Name: "Santa Fe", RadiusMeters: 2500},
	{Lat: 19.4363, Lng: -99.0721, Name: "Aeropuerto AICM", RadiusMeters: 2500},
	{Lat: 19.4042, Lng: -99.0907, Name: "Autódromo Hermanos Rodríguez", RadiusMeters: 2000},
	{Lat: 19.4895, Lng: -99.1272, Name: "Tlatelolco", RadiusMeters: 1500},
	{Lat: 19.3556, Lng: -99.1626, Name: "Ciudad Universitaria", RadiusMeters: 2500},
}

// CuratedZones returns a copy of the hand-picked zone list.
func CuratedZones() []model.Zone {
	out := make([]model.Zone, len(curated))
	copy(out, curated)
	return out
}
