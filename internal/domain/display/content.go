package display

// Quotes are shown alongside a high-risk result.
var Quotes = []string{
	"Believe you can and you're halfway there. – Theodore Roosevelt",
	"The only way to do great work is to love what you do. – Steve Jobs",
	"Success is not final, failure is not fatal: it is the courage to continue that counts. – Winston Churchill",
	"The future belongs to those who believe in the beauty of their dreams. – Eleanor Roosevelt",
	"It always seems impossible until it's done. – Nelson Mandela",
}

// Tips are shown alongside a low-risk result.
var Tips = []string{
	"Eat a balanced diet rich in fruits, vegetables, and whole grains.",
	"Engage in regular physical activity for at least 30 minutes most days of the week.",
	"Maintain a healthy weight to reduce strain on your heart.",
	"Get enough sleep, aiming for 7-9 hours per night.",
	"Manage stress through relaxation techniques like meditation or yoga.",
	"Limit processed foods, sugary drinks, and unhealthy fats.",
	"Stay hydrated by drinking plenty of water throughout the day.",
	"Regular check-ups with your doctor are crucial for early detection and prevention.",
}

// Images are landscape photos paired with a low-risk result.
var Images = []string{
	"https://images.unsplash.com/photo-1501854140801-50d00698b723?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1470071459604-3b5ec3a7fe05?q=80&w=1948&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1469474968028-5672ee0edcb8?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1475924156734-41762ae1371f?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1500964757637-c85e8a162699?q=80&w=1903&auto=format&fit=crop",
}
