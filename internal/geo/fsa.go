package geo

// fsaCentroids maps Ontario forward sortation areas (the first three postal
// code characters) to approximate centroids. Coverage is the major population
// centres; misses fall through to the external geocoder.
var fsaCentroids = map[string]Coordinates{
	// Toronto
	"M1B": {43.8067, -79.1944},
	"M1C": {43.7845, -79.1605},
	"M1E": {43.7636, -79.1887},
	"M1G": {43.7709, -79.2169},
	"M1H": {43.7731, -79.2395},
	"M1J": {43.7447, -79.2394},
	"M1K": {43.7280, -79.2620},
	"M1L": {43.7111, -79.2846},
	"M1M": {43.7163, -79.2395},
	"M1N": {43.6927, -79.2648},
	"M1P": {43.7574, -79.2733},
	"M1R": {43.7500, -79.2958},
	"M1S": {43.7942, -79.2620},
	"M1T": {43.7816, -79.3043},
	"M1V": {43.8153, -79.2846},
	"M1W": {43.7995, -79.3184},
	"M2H": {43.8037, -79.3634},
	"M2J": {43.7785, -79.3466},
	"M2K": {43.7869, -79.3855},
	"M2L": {43.7574, -79.3747},
	"M2M": {43.7894, -79.4084},
	"M2N": {43.7701, -79.4084},
	"M2R": {43.7827, -79.4423},
	"M3A": {43.7533, -79.3297},
	"M3B": {43.7459, -79.3521},
	"M3C": {43.7258, -79.3409},
	"M3H": {43.7543, -79.4423},
	"M3J": {43.7679, -79.4873},
	"M3K": {43.7374, -79.4647},
	"M3L": {43.7390, -79.5069},
	"M3M": {43.7284, -79.4956},
	"M3N": {43.7616, -79.5209},
	"M4A": {43.7258, -79.3156},
	"M4B": {43.7063, -79.3094},
	"M4C": {43.6953, -79.3183},
	"M4E": {43.6763, -79.2930},
	"M4G": {43.7090, -79.3634},
	"M4H": {43.7053, -79.3493},
	"M4J": {43.6853, -79.3381},
	"M4K": {43.6795, -79.3521},
	"M4L": {43.6689, -79.3155},
	"M4M": {43.6595, -79.3409},
	"M4N": {43.7280, -79.3887},
	"M4P": {43.7128, -79.3901},
	"M4R": {43.7153, -79.4056},
	"M4S": {43.7043, -79.3887},
	"M4T": {43.6895, -79.3831},
	"M4V": {43.6864, -79.4000},
	"M4W": {43.6795, -79.3775},
	"M4X": {43.6679, -79.3676},
	"M4Y": {43.6659, -79.3832},
	"M5A": {43.6542, -79.3606},
	"M5B": {43.6571, -79.3789},
	"M5C": {43.6514, -79.3754},
	"M5E": {43.6447, -79.3733},
	"M5G": {43.6579, -79.3873},
	"M5H": {43.6505, -79.3845},
	"M5J": {43.6408, -79.3817},
	"M5K": {43.6471, -79.3816},
	"M5L": {43.6481, -79.3798},
	"M5M": {43.7332, -79.4197},
	"M5N": {43.7116, -79.4169},
	"M5P": {43.6969, -79.4113},
	"M5R": {43.6727, -79.4056},
	"M5S": {43.6626, -79.4000},
	"M5T": {43.6532, -79.4000},
	"M5V": {43.6408, -79.3978},
	"M6A": {43.7181, -79.4647},
	"M6B": {43.7096, -79.4450},
	"M6C": {43.6937, -79.4281},
	"M6E": {43.6890, -79.4535},
	"M6G": {43.6695, -79.4225},
	"M6H": {43.6690, -79.4422},
	"M6J": {43.6479, -79.4197},
	"M6K": {43.6368, -79.4282},
	"M6L": {43.7137, -79.4900},
	"M6M": {43.6911, -79.4760},
	"M6N": {43.6731, -79.4872},
	"M6P": {43.6616, -79.4647},
	"M6R": {43.6489, -79.4563},
	"M6S": {43.6515, -79.4844},
	"M8V": {43.6056, -79.5013},
	"M8W": {43.6024, -79.5434},
	"M8X": {43.6536, -79.5069},
	"M8Y": {43.6362, -79.4985},
	"M8Z": {43.6288, -79.5209},
	"M9A": {43.6678, -79.5322},
	"M9B": {43.6509, -79.5547},
	"M9C": {43.6435, -79.5772},
	"M9M": {43.7247, -79.5322},
	"M9N": {43.7064, -79.5181},
	"M9P": {43.6962, -79.5322},
	"M9R": {43.6889, -79.5547},
	"M9V": {43.7394, -79.5884},
	"M9W": {43.7067, -79.5940},

	// Ottawa
	"K1A": {45.4215, -75.6972},
	"K1G": {45.4003, -75.6299},
	"K1H": {45.3843, -75.6597},
	"K1K": {45.4340, -75.6402},
	"K1N": {45.4292, -75.6820},
	"K1P": {45.4208, -75.6983},
	"K1S": {45.3994, -75.6880},
	"K1Y": {45.4021, -75.7323},
	"K1Z": {45.3960, -75.7520},
	"K2A": {45.3851, -75.7624},
	"K2P": {45.4153, -75.6930},
	"K7K": {44.2436, -76.4810},
	"K7L": {44.2312, -76.4860},
	"K7M": {44.2277, -76.5693},
	"K8N": {44.1714, -77.3740},
	"K9H": {44.3070, -78.3215},
	"K9J": {44.2914, -78.3379},

	// Hamilton / Niagara / GTA west
	"L2G": {43.0732, -79.0818},
	"L2R": {43.1614, -79.2458},
	"L5B": {43.5896, -79.6444},
	"L5L": {43.5252, -79.6876},
	"L6Y": {43.6621, -79.7560},
	"L7A": {43.7047, -79.8090},
	"L8P": {43.2501, -79.8817},
	"L8S": {43.2570, -79.9177},
	"L9H": {43.2665, -79.9811},

	// Southwestern Ontario
	"N2G": {43.4489, -80.4926},
	"N2L": {43.4723, -80.5449},
	"N5Y": {43.0202, -81.2365},
	"N6A": {42.9936, -81.2497},
	"N6B": {42.9836, -81.2389},
	"N8X": {42.2935, -83.0270},
	"N9A": {42.3174, -83.0391},

	// Northern Ontario
	"P1A": {46.3091, -79.4608},
	"P3E": {46.4665, -81.0027},
	"P6A": {46.5219, -84.3461},
	"P7B": {48.4123, -89.2631},
}

// LookupFSA returns the centroid for a forward sortation area, or false when
// the prefix is outside the table's coverage.
func LookupFSA(fsa string) (Coordinates, bool) {
	c, ok := fsaCentroids[fsa]
	return c, ok
}
