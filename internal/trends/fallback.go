package trends

// Static topic lists served when the provider is unreachable or returns nothing.
var fallbackTopics = map[string][]string{
	"VN": {
		"Tết Nguyên Đán", "Du lịch Việt Nam", "Ẩm thực truyền thống",
		"Thời trang", "Công nghệ", "Giáo dục", "Sức khỏe",
		"Làm đẹp", "Mua sắm online", "Game mobile", "K-pop",
		"Phim Việt", "Bóng đá", "Crypto", "Bất động sản",
	},
	"TH": {
		"สงกรานต์", "อาหารไทย", "ท่องเที่ยว", "แฟชั่น",
		"เทคโนโลยี", "การศึกษา", "สุขภาพ", "ความงาม",
		"ช้อปปิ้งออนไลน์", "เกมมือถือ", "K-pop", "ละครไทย",
		"ฟุตบอล", "คริปโตเคอร์เรนซี", "อสังหาริมทรัพย์",
	},
	"SG": {
		"Singapore Food", "Travel Singapore", "Fashion", "Technology",
		"Education", "Health", "Beauty", "Online Shopping",
		"Mobile Games", "K-pop", "Singapore Drama", "Football",
		"Cryptocurrency", "Real Estate", "Hawker Centers",
	},
	"MY": {
		"Malaysian Food", "Travel Malaysia", "Fashion", "Technology",
		"Education", "Health", "Beauty", "Online Shopping",
		"Mobile Games", "K-pop", "Malaysian Drama", "Football",
		"Cryptocurrency", "Property", "Raya Celebration",
	},
	"ID": {
		"Makanan Indonesia", "Wisata Indonesia", "Fashion", "Teknologi",
		"Pendidikan", "Kesehatan", "Kecantikan", "Belanja Online",
		"Game Mobile", "K-pop", "Drama Indonesia", "Sepak Bola",
		"Cryptocurrency", "Properti", "Lebaran",
	},
	"PH": {
		"Filipino Food", "Travel Philippines", "Fashion", "Technology",
		"Education", "Health", "Beauty", "Online Shopping",
		"Mobile Games", "K-pop", "Filipino Drama", "Basketball",
		"Cryptocurrency", "Real Estate", "Christmas",
	},
}

// FallbackTopics returns up to n static topics for the country. Unknown
// countries fall back to the Vietnam list.
func FallbackTopics(countryCode string, n int) []string {
	topics, ok := fallbackTopics[countryCode]
	if !ok {
		topics = fallbackTopics["VN"]
	}
	if n < 0 {
		n = 0
	}
	if n > len(topics) {
		n = len(topics)
	}
	result := make([]string, n)
	copy(result, topics[:n])
	return result
}
